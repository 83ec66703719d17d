// Package extract derives plain text from stored documents. It is the
// text-extraction collaborator of the comparison pipeline: the pipeline only
// depends on the Extractor interface, so the file-format handling here can
// be swapped for a hosted parser without touching the orchestration.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor turns a document's raw bytes into comparable plain text.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// FileExtractor dispatches on the file extension: PDF and DOCX get format
// parsers, everything else is treated as UTF-8 text.
type FileExtractor struct{}

// NewFileExtractor creates a FileExtractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract implements Extractor.
func (e *FileExtractor) Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := fromPDF(data)
		if err != nil {
			return "", fmt.Errorf("extract: pdf %s: %w", filename, err)
		}
		return text, nil
	case ".docx":
		text, err := fromDOCX(data)
		if err != nil {
			return "", fmt.Errorf("extract: docx %s: %w", filename, err)
		}
		return text, nil
	default:
		return fromPlain(data), nil
	}
}

// fromPlain interprets bytes as UTF-8, replacing invalid sequences so the
// result is always safe to encode downstream.
func fromPlain(data []byte) string {
	s := string(data)
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
