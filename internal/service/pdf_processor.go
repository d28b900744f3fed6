package service

import (
	"fmt"
	"strings"

	"doc-study-server/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// PDFProcessor reads the embedded text layer of PDFs. It is the fallback
// when OCR returns nothing for a PDF.
type PDFProcessor struct {
	logger domain.Logger
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(logger domain.Logger) *PDFProcessor {
	return &PDFProcessor{
		logger: logger,
	}
}

// ExtractText returns the text of every page, pages separated by a blank line.
func (p *PDFProcessor) ExtractText(pdfBytes []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			p.logger.Warn("Failed to extract text from page", "page", i+1, "error", err)
			continue
		}
		if text = normalizeText(text); text != "" {
			pages = append(pages, text)
		}
	}

	p.logger.Debug("PDF text layer read", "pages", doc.NumPage(), "pages_with_text", len(pages))
	return strings.Join(pages, "\n\n"), nil
}

// normalizeText unifies line endings, trims every line and collapses runs of
// blank lines to one.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	// Replace non-breaking spaces.
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			blank++
			if blank <= 1 {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, t)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
