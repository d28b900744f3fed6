package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"doc-study-server/internal/domain"

	_ "modernc.org/sqlite"
)

// Fixed-width so that created_at sorts lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteAnalysisRepository stores analyses in a local SQLite file. It is the
// default store when Supabase is not configured.
type SQLiteAnalysisRepository struct {
	db     *sql.DB
	logger domain.Logger
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string, logger domain.Logger) (*SQLiteAnalysisRepository, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn = "file:" + path
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and serializes writes.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Info("SQLite analysis store ready", "path", path)
	return &SQLiteAnalysisRepository{db: conn, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			kind TEXT NOT NULL,
			file_size INTEGER NOT NULL DEFAULT 0,
			extracted_text TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			qa TEXT NOT NULL DEFAULT '',
			mcqs TEXT NOT NULL DEFAULT '',
			translated_text TEXT NOT NULL DEFAULT '',
			target_language TEXT NOT NULL DEFAULT '',
			text_source TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteAnalysisRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteAnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO analyses
		(id, filename, kind, file_size, extracted_text, summary, qa, mcqs, translated_text, target_language, text_source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Filename, string(a.Kind), a.FileSize, a.ExtractedText, a.Summary, a.QA, a.MCQs,
		a.TranslatedText, a.TargetLanguage, a.TextSource, a.CreatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	r.logger.Debug("Analysis stored", "analysis_id", a.ID)
	return nil
}

func (r *SQLiteAnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	row := r.db.QueryRowContext(ctx, `SELECT
		id, filename, kind, file_size, extracted_text, summary, qa, mcqs, translated_text, target_language, text_source, created_at
		FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return a, nil
}

func (r *SQLiteAnalysisRepository) List(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, filename, kind, file_size, extracted_text, summary, qa, mcqs, translated_text, target_language, text_source, created_at
		FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s rowScanner) (*domain.Analysis, error) {
	var (
		a         domain.Analysis
		kind      string
		createdAt string
	)
	if err := s.Scan(&a.ID, &a.Filename, &kind, &a.FileSize, &a.ExtractedText, &a.Summary, &a.QA, &a.MCQs,
		&a.TranslatedText, &a.TargetLanguage, &a.TextSource, &createdAt); err != nil {
		return nil, err
	}
	a.Kind = domain.DocumentKind(kind)
	if t, err := time.Parse(sqliteTimeLayout, createdAt); err == nil {
		a.CreatedAt = t
	}
	return &a, nil
}
