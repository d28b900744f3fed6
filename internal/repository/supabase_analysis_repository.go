package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"doc-study-server/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

const analysesTable = "analyses"

// SupabaseAnalysisRepository stores analyses in a Supabase Postgres table.
type SupabaseAnalysisRepository struct {
	supabaseClient *SupabaseClient
	logger         domain.Logger
}

// NewSupabaseAnalysisRepository creates a new Supabase analysis repository
func NewSupabaseAnalysisRepository(supabaseClient *SupabaseClient, logger domain.Logger) *SupabaseAnalysisRepository {
	return &SupabaseAnalysisRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Save inserts a new analysis row.
func (r *SupabaseAnalysisRepository) Save(ctx context.Context, analysis *domain.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return err
	}
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	row := analysisToRow(analysis)
	// Postgres rejects NUL bytes in text columns.
	for k, v := range row {
		if s, ok := v.(string); ok {
			row[k] = strings.ReplaceAll(s, "\x00", "")
		}
	}

	_, _, err := client.From(analysesTable).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	r.logger.Info("Analysis stored", "analysis_id", analysis.ID, "filename", analysis.Filename)
	return nil
}

// GetByID returns domain.ErrAnalysisNotFound when no row matches.
func (r *SupabaseAnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From(analysesTable).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrAnalysisNotFound
	}
	return mapToAnalysis(rows[0]), nil
}

// List returns the newest analyses first.
func (r *SupabaseAnalysisRepository) List(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	q := client.From(analysesTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		q = q.Limit(limit, "")
	}

	data, _, err := q.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make([]*domain.Analysis, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapToAnalysis(row))
	}
	return out, nil
}

func analysisToRow(a *domain.Analysis) map[string]interface{} {
	return map[string]interface{}{
		"id":              a.ID,
		"filename":        a.Filename,
		"kind":            string(a.Kind),
		"file_size":       a.FileSize,
		"extracted_text":  a.ExtractedText,
		"summary":         a.Summary,
		"qa":              a.QA,
		"mcqs":            a.MCQs,
		"translated_text": a.TranslatedText,
		"target_language": a.TargetLanguage,
		"text_source":     a.TextSource,
		"created_at":      a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapToAnalysis(data map[string]interface{}) *domain.Analysis {
	return &domain.Analysis{
		ID:             getString(data, "id"),
		Filename:       getString(data, "filename"),
		Kind:           domain.DocumentKind(getString(data, "kind")),
		FileSize:       getInt64(data, "file_size"),
		ExtractedText:  getString(data, "extracted_text"),
		Summary:        getString(data, "summary"),
		QA:             getString(data, "qa"),
		MCQs:           getString(data, "mcqs"),
		TranslatedText: getString(data, "translated_text"),
		TargetLanguage: getString(data, "target_language"),
		TextSource:     getString(data, "text_source"),
		CreatedAt:      getTime(data, "created_at"),
	}
}

// Helper functions for type conversion
func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt64(data map[string]interface{}, key string) int64 {
	if val, ok := data[key]; ok && val != nil {
		switch v := val.(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		case string:
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func getTime(data map[string]interface{}, key string) time.Time {
	s := getString(data, key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
