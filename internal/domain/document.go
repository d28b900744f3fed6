package domain

import (
	"path/filepath"
	"strings"
)

// DocumentKind tags the content of an uploaded file.
type DocumentKind string

const (
	DocumentKindImage DocumentKind = "image"
	DocumentKindPDF   DocumentKind = "pdf"
)

// allowedExtensions maps accepted upload extensions to their kind.
var allowedExtensions = map[string]DocumentKind{
	".png":  DocumentKindImage,
	".jpg":  DocumentKindImage,
	".jpeg": DocumentKindImage,
	".pdf":  DocumentKindPDF,
}

// KindFromFilename returns the document kind for a filename based on its
// extension. ok is false for unsupported extensions.
func KindFromFilename(name string) (DocumentKind, bool) {
	kind, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}

// Document is an uploaded file handed to the text extractor. It is not
// modified once received.
type Document struct {
	Filename string
	Kind     DocumentKind
	Data     []byte
}

// Size returns the byte length of the document.
func (d *Document) Size() int {
	return len(d.Data)
}

// IsPDF reports whether the document is a PDF.
func (d *Document) IsPDF() bool {
	return d.Kind == DocumentKindPDF
}

// Validate checks the document before it is sent anywhere.
func (d *Document) Validate() error {
	if d.Kind != DocumentKindImage && d.Kind != DocumentKindPDF {
		return &ValidationError{Field: "kind", Message: "unsupported document kind"}
	}
	if len(d.Data) == 0 {
		return &ValidationError{Field: "data", Message: "document is empty"}
	}
	return nil
}
