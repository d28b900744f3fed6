package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"doc-study-server/internal/domain"
)

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("image-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractCommand_Run(t *testing.T) {
	var polls int
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/read/analyze"):
			w.Header().Set("Operation-Location", server.URL+"/vision/v3.2/read/analyzeResults/op-1")
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet:
			polls++
			w.Header().Set("Content-Type", "application/json")
			if polls == 1 {
				_, _ = w.Write([]byte(`{"status":"running"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"succeeded","analyzeResult":{"readResults":[{"page":1,"lines":[{"text":"hello"}]}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cmd := ExtractCommand{
		ProviderFlags: ProviderFlags{Endpoint: server.URL, Key: "k", Timeout: time.Second, LogLevel: "error"},
		File:          writeTempFile(t, "scan.png"),
		PollInterval:  time.Millisecond,
		MaxAttempts:   5,
		JSON:          true,
	}
	if err := cmd.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polls != 2 {
		t.Errorf("expected 2 status queries, got %d", polls)
	}
}

func TestExtractCommand_UnsupportedFile(t *testing.T) {
	cmd := ExtractCommand{
		ProviderFlags: ProviderFlags{Endpoint: "http://127.0.0.1:1", Key: "k", LogLevel: "error"},
		File:          writeTempFile(t, "notes.txt"),
	}
	if err := cmd.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a .txt file")
	}
}

func TestStatusCommand_InvalidHandle(t *testing.T) {
	cmd := StatusCommand{
		ProviderFlags: ProviderFlags{Endpoint: "http://127.0.0.1:1", Key: "k", LogLevel: "error"},
		Handle:        "not-a-url",
	}
	err := cmd.Run(context.Background())
	if !domain.IsExtractionKind(err, domain.ExtractionInvalidHandle) {
		t.Fatalf("expected invalid_handle error, got %v", err)
	}
}
