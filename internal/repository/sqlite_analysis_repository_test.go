package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"doc-study-server/internal/domain"

	"github.com/google/go-cmp/cmp"
)

type mockLogger struct{}

func (mockLogger) Info(msg string, fields ...interface{})             {}
func (mockLogger) Error(msg string, err error, fields ...interface{}) {}
func (mockLogger) Debug(msg string, fields ...interface{})            {}
func (mockLogger) Warn(msg string, fields ...interface{})             {}

func newTestRepo(t *testing.T) *SQLiteAnalysisRepository {
	t.Helper()
	repo, err := OpenSQLite(":memory:", mockLogger{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteAnalysisRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := &domain.Analysis{
		ID:             "a-1",
		Filename:       "notes.png",
		Kind:           domain.DocumentKindImage,
		FileSize:       2048,
		ExtractedText:  "Mitochondria\nATP",
		Summary:        "Cells make energy.",
		QA:             "Q: What? A: ATP",
		MCQs:           "Question: ...",
		TranslatedText: "خلیات",
		TargetLanguage: "ur",
		TextSource:     "ocr",
		CreatedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetByID(ctx, "a-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrAnalysisNotFound) {
		t.Errorf("expected ErrAnalysisNotFound, got %v", err)
	}
}

func TestSQLiteAnalysisRepository_SaveRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Save(context.Background(), &domain.Analysis{Filename: "x.png"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "id" {
		t.Fatalf("expected id validation error, got %v", err)
	}
}

func TestSQLiteAnalysisRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		a := &domain.Analysis{ID: id, Filename: id + ".pdf", Kind: domain.DocumentKindPDF, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Save(ctx, a); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"new", "mid", "old"}},
		{name: "limited", limit: 2, want: []string{"new", "mid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.limit)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, a := range list {
				ids = append(ids, a.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenSQLite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analyses.db")
	repo, err := OpenSQLite(path, mockLogger{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	if err := repo.Save(context.Background(), &domain.Analysis{ID: "x", Filename: "x.png", Kind: domain.DocumentKindImage, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestMapToAnalysis(t *testing.T) {
	row := map[string]interface{}{
		"id":          "a-9",
		"filename":    "scan.jpg",
		"kind":        "image",
		"file_size":   float64(512),
		"summary":     "short",
		"text_source": "ocr",
		"created_at":  "2024-05-01T12:30:00.123456+00:00",
	}
	got := mapToAnalysis(row)
	if got.ID != "a-9" || got.Kind != domain.DocumentKindImage || got.FileSize != 512 || got.Summary != "short" {
		t.Errorf("unexpected mapping: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should parse")
	}

	back := analysisToRow(got)
	if back["file_size"] != int64(512) || back["kind"] != "image" {
		t.Errorf("unexpected row: %+v", back)
	}
}
