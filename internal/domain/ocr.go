package domain

import (
	"context"
	"strings"
)

// OperationHandle locates a submitted OCR job on the provider side. For the
// Azure Read API it is the Operation-Location URL.
type OperationHandle string

// OperationStatus is the state of a remote OCR job.
type OperationStatus string

const (
	OperationRunning   OperationStatus = "running"
	OperationSucceeded OperationStatus = "succeeded"
	OperationFailed    OperationStatus = "failed"
)

// IsTerminal reports whether no further transition can happen.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationSucceeded || s == OperationFailed
}

// ExtractionResult holds the recognised text lines in document order.
type ExtractionResult struct {
	Lines     []string `json:"lines"`
	PageCount int      `json:"page_count,omitempty"`
}

// Text joins the lines with newlines and trims trailing whitespace.
func (r *ExtractionResult) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(r.Lines, "\n"))
}

// TextExtractor is the contract the rest of the application uses to turn a
// document into text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *Document) (string, error)
}
