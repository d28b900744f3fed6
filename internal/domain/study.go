package domain

import (
	"context"
	"io"
	"time"
)

// Analysis is the study material generated from one uploaded document.
type Analysis struct {
	ID             string       `json:"id"`
	Filename       string       `json:"filename"`
	Kind           DocumentKind `json:"kind"`
	FileSize       int64        `json:"file_size"`
	ExtractedText  string       `json:"extracted_text"`
	Summary        string       `json:"summary"`
	QA             string       `json:"qa"`
	MCQs           string       `json:"mcqs"`
	TranslatedText string       `json:"translated_text"`
	TargetLanguage string       `json:"target_language"`
	TextSource     string       `json:"text_source"` // "ocr" or "pdf_text"
	CreatedAt      time.Time    `json:"created_at"`
}

// Validate checks the fields required before an analysis is stored.
func (a *Analysis) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Message: "analysis ID is required"}
	}
	if a.Filename == "" {
		return &ValidationError{Field: "filename", Message: "filename is required"}
	}
	if a.FileSize < 0 {
		return &ValidationError{Field: "file_size", Message: "file size cannot be negative"}
	}
	return nil
}

// Upload is an incoming multipart file before it has been read.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ChatRequest asks a question about previously extracted text.
type ChatRequest struct {
	Message       string `json:"message"`
	ExtractedText string `json:"extracted_text"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// StudyService defines the use-case operations exposed over HTTP.
type StudyService interface {
	Analyze(ctx context.Context, upload Upload) (*Analysis, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]*Analysis, error)
}

// LanguageModel completes a single prompt.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Translator translates text into a target language code.
type Translator interface {
	Translate(ctx context.Context, text, to string) (string, error)
}

// PDFTextReader reads the embedded text layer of a PDF.
type PDFTextReader interface {
	ExtractText(data []byte) (string, error)
}

// AnalysisRepository persists generated analyses.
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *Analysis) error
	GetByID(ctx context.Context, id string) (*Analysis, error)
	List(ctx context.Context, limit int) ([]*Analysis, error)
}

// DocumentArchive keeps a copy of the original upload.
type DocumentArchive interface {
	Store(ctx context.Context, path string, doc *Document) error
}
