package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"doc-study-server/internal/domain"
	"doc-study-server/internal/llm"
	apperrors "doc-study-server/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	TextSourceOCR     = "ocr"
	TextSourcePDFText = "pdf_text"
)

// StudyDeps groups the collaborators of StudyService. Repository and Archive
// may be nil, in which case analyses are neither persisted nor archived.
type StudyDeps struct {
	Extractor      domain.TextExtractor
	PDFReader      domain.PDFTextReader
	Model          domain.LanguageModel
	Translator     domain.Translator
	Repository     domain.AnalysisRepository
	Archive        domain.DocumentArchive
	TargetLanguage string
	MaxFileSize    int64
}

// StudyService turns an uploaded document into study material.
type StudyService struct {
	deps   StudyDeps
	logger domain.Logger
	now    func() time.Time
	newID  func() string
}

// NewStudyService creates a new study service
func NewStudyService(deps StudyDeps, logger domain.Logger) *StudyService {
	return &StudyService{
		deps:   deps,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Analyze extracts the text of an upload and generates a summary, Q&A pairs,
// multiple choice questions and a translation from it.
func (s *StudyService) Analyze(ctx context.Context, upload domain.Upload) (*domain.Analysis, error) {
	kind, ok := domain.KindFromFilename(upload.Filename)
	if !ok {
		return nil, invalid("Invalid file type. Please upload PNG, JPG, JPEG, or PDF files.", domain.ErrUnsupportedFileType)
	}
	if s.deps.MaxFileSize > 0 && upload.Size > s.deps.MaxFileSize {
		return nil, invalid(fmt.Sprintf("File too large. Maximum size is %d MB.", s.deps.MaxFileSize>>20), domain.ErrFileTooLarge)
	}

	data, err := s.readUpload(upload)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{Filename: upload.Filename, Kind: kind, Data: data}
	if err := doc.Validate(); err != nil {
		return nil, invalid("Invalid file", err)
	}

	analysis := &domain.Analysis{
		ID:             s.newID(),
		Filename:       upload.Filename,
		Kind:           kind,
		FileSize:       int64(len(data)),
		TargetLanguage: s.deps.TargetLanguage,
		CreatedAt:      s.now().UTC(),
	}

	text, source, err := s.extractText(ctx, doc)
	if err != nil {
		return nil, err
	}
	analysis.ExtractedText = text
	analysis.TextSource = source

	s.generate(ctx, analysis)
	s.persist(ctx, analysis, doc)

	s.logger.Info("Document analyzed",
		"analysis_id", analysis.ID,
		"filename", analysis.Filename,
		"text_source", analysis.TextSource,
		"chars", len(analysis.ExtractedText))
	return analysis, nil
}

func (s *StudyService) readUpload(upload domain.Upload) ([]byte, error) {
	if upload.Reader == nil {
		return nil, invalid("No file uploaded", domain.ErrInvalidFile)
	}
	r := upload.Reader
	if s.deps.MaxFileSize > 0 {
		r = io.LimitReader(r, s.deps.MaxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to read uploaded file", err)
	}
	if s.deps.MaxFileSize > 0 && int64(len(data)) > s.deps.MaxFileSize {
		return nil, invalid(fmt.Sprintf("File too large. Maximum size is %d MB.", s.deps.MaxFileSize>>20), domain.ErrFileTooLarge)
	}
	return data, nil
}

// extractText runs OCR and falls back to the PDF text layer when OCR fails or
// finds nothing.
func (s *StudyService) extractText(ctx context.Context, doc *domain.Document) (string, string, error) {
	text, ocrErr := s.deps.Extractor.Extract(ctx, doc)
	if ocrErr == nil && strings.TrimSpace(text) != "" {
		return text, TextSourceOCR, nil
	}

	if doc.IsPDF() && s.deps.PDFReader != nil && ctx.Err() == nil {
		if ocrErr != nil {
			s.logger.Warn("OCR failed, reading PDF text layer", "filename", doc.Filename, "error", ocrErr)
		}
		fallback, err := s.deps.PDFReader.ExtractText(doc.Data)
		if err != nil {
			s.logger.Error("PDF text fallback failed", err, "filename", doc.Filename)
		} else if strings.TrimSpace(fallback) != "" {
			return fallback, TextSourcePDFText, nil
		}
	}

	if ocrErr != nil {
		s.logger.Error("Text extraction failed", ocrErr, "filename", doc.Filename)
		return "", "", apperrors.FromExtraction(ocrErr)
	}
	return "", "", apperrors.NewExtractionError("No text could be extracted from the document.", domain.ErrNoTextExtracted)
}

// generate fills the study fields concurrently. A failed model call leaves
// its field empty and a failed translation keeps the source text.
func (s *StudyService) generate(ctx context.Context, a *domain.Analysis) {
	text := a.ExtractedText
	var summary, qa, mcqs, translated string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary = s.complete(gctx, "summary", llm.SummaryPrompt(text), llm.SummaryMaxTokens)
		return nil
	})
	g.Go(func() error {
		qa = s.complete(gctx, "qa", llm.QAPrompt(text), llm.QAMaxTokens)
		return nil
	})
	g.Go(func() error {
		mcqs = s.complete(gctx, "mcqs", llm.MCQPrompt(text), llm.MCQMaxTokens)
		return nil
	})
	g.Go(func() error {
		translated = s.translate(gctx, text)
		return nil
	})
	// Each task absorbs its own failure, so Wait never reports one.
	_ = g.Wait()

	a.Summary = summary
	a.QA = qa
	a.MCQs = mcqs
	a.TranslatedText = translated
}

func (s *StudyService) complete(ctx context.Context, task, prompt string, maxTokens int) string {
	if s.deps.Model == nil {
		return ""
	}
	out, err := s.deps.Model.Complete(ctx, prompt, maxTokens)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotConfigured) {
			s.logger.Debug("Skipping generation, no model configured", "task", task)
		} else {
			s.logger.Error("Generation failed", err, "task", task)
		}
		return ""
	}
	return out
}

func (s *StudyService) translate(ctx context.Context, text string) string {
	if s.deps.Translator == nil || s.deps.TargetLanguage == "" {
		return text
	}
	out, err := s.deps.Translator.Translate(ctx, text, s.deps.TargetLanguage)
	if err != nil {
		if !errors.Is(err, domain.ErrProviderNotConfigured) {
			s.logger.Error("Translation failed", err, "to", s.deps.TargetLanguage)
		}
		return text
	}
	return out
}

// persist archives the upload and stores the analysis. Failures are logged
// and do not fail the request.
func (s *StudyService) persist(ctx context.Context, a *domain.Analysis, doc *domain.Document) {
	if s.deps.Archive != nil {
		key := path.Join(a.ID, path.Base(strings.ReplaceAll(doc.Filename, "\\", "/")))
		if err := s.deps.Archive.Store(ctx, key, doc); err != nil {
			s.logger.Error("Failed to archive upload", err, "analysis_id", a.ID)
		}
	}
	if s.deps.Repository != nil {
		if err := s.deps.Repository.Save(ctx, a); err != nil {
			s.logger.Error("Failed to store analysis", err, "analysis_id", a.ID)
		}
	}
}

// Chat answers a question about previously extracted text.
func (s *StudyService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("Message is required")
	}
	if s.deps.Model == nil {
		return &domain.ChatResponse{Response: llm.ChatFallbackReply}, nil
	}

	answer, err := s.deps.Model.Complete(ctx, llm.ChatPrompt(req.ExtractedText, message), llm.ChatMaxTokens)
	if err != nil {
		s.logger.Error("Chat completion failed", err)
		return &domain.ChatResponse{Response: llm.ChatFallbackReply}, nil
	}
	return &domain.ChatResponse{Response: answer}, nil
}

// GetAnalysis returns a stored analysis by ID.
func (s *StudyService) GetAnalysis(ctx context.Context, id string) (*domain.Analysis, error) {
	if s.deps.Repository == nil {
		return nil, apperrors.NewNotFoundError("Analysis not found")
	}
	a, err := s.deps.Repository.GetByID(ctx, id)
	if errors.Is(err, domain.ErrAnalysisNotFound) {
		return nil, apperrors.NewNotFoundError("Analysis not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve analysis", err)
	}
	return a, nil
}

// ListAnalyses returns stored analyses, newest first.
func (s *StudyService) ListAnalyses(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if s.deps.Repository == nil {
		return []*domain.Analysis{}, nil
	}
	list, err := s.deps.Repository.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to retrieve analyses", err)
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	return list, nil
}

func invalid(message string, cause error) *apperrors.AppError {
	appErr := apperrors.NewValidationError(message)
	appErr.Cause = cause
	return appErr
}
