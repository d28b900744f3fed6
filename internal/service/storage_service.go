package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doc-study-server/internal/domain"
)

// SupabaseStorage archives uploads in a Supabase Storage bucket.
type SupabaseStorage struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewStorageService(
	baseURL string,
	apiKey string,
	bucket string,
) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *SupabaseStorage) Store(
	ctx context.Context,
	path string,
	doc *domain.Document,
) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/storage/v1/object/"+s.bucket+"/"+path,
		bytes.NewReader(doc.Data),
	)
	if err != nil {
		return fmt.Errorf("build storage request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", contentType(doc))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("storage upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// LocalStorage archives uploads under a directory on disk.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) Store(ctx context.Context, path string, doc *domain.Document) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return fmt.Errorf("invalid storage path %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(full, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	return nil
}

func contentType(doc *domain.Document) string {
	if doc.IsPDF() {
		return "application/pdf"
	}
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}
