package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"doc-study-server/internal/domain"
)

func TestNewStorageService(t *testing.T) {
	svc := NewStorageService("http://localhost:54321/", "test-key", "uploads")
	if svc.baseURL != "http://localhost:54321" {
		t.Fatalf("expected base url to be set, got %s", svc.baseURL)
	}
	if svc.apiKey != "test-key" {
		t.Fatalf("expected api key to be set, got %s", svc.apiKey)
	}
	if svc.client == nil {
		t.Fatalf("expected http client to be initialized")
	}
}

func TestSupabaseStorage_Store(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewStorageService(server.URL, "service-key", "uploads")
	doc := &domain.Document{Filename: "notes.pdf", Kind: domain.DocumentKindPDF, Data: []byte("%PDF-1.4")}
	if err := svc.Store(context.Background(), "a-1/notes.pdf", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/storage/v1/object/uploads/a-1/notes.pdf" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotType != "application/pdf" {
		t.Errorf("content type = %q", gotType)
	}
	if string(gotBody) != "%PDF-1.4" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestSupabaseStorage_StoreFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Duplicate"}`, http.StatusConflict)
	}))
	defer server.Close()

	svc := NewStorageService(server.URL, "k", "uploads")
	doc := &domain.Document{Filename: "a.png", Kind: domain.DocumentKindImage, Data: []byte{1}}
	if err := svc.Store(context.Background(), "a/a.png", doc); err == nil {
		t.Fatal("expected an error for a 409 response")
	}
}

func TestLocalStorage_Store(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStorage(root)
	doc := &domain.Document{Filename: "scan.jpg", Kind: domain.DocumentKindImage, Data: []byte("jpeg")}

	if err := store.Store(context.Background(), "a-1/scan.jpg", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "a-1", "scan.jpg"))
	if err != nil {
		t.Fatalf("read archived file: %v", err)
	}
	if string(data) != "jpeg" {
		t.Errorf("archived data = %q", data)
	}

	if err := store.Store(context.Background(), "../escape.jpg", doc); err == nil {
		t.Error("expected paths outside the root to be rejected")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		filename string
		kind     domain.DocumentKind
		want     string
	}{
		{"a.pdf", domain.DocumentKindPDF, "application/pdf"},
		{"a.PNG", domain.DocumentKindImage, "image/png"},
		{"a.jpeg", domain.DocumentKindImage, "image/jpeg"},
		{"a.bin", domain.DocumentKindImage, "application/octet-stream"},
	}
	for _, tt := range tests {
		got := contentType(&domain.Document{Filename: tt.filename, Kind: tt.kind})
		if got != tt.want {
			t.Errorf("contentType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
