// ABOUTME: Text extraction boundary for uploaded files
// ABOUTME: Real PDF/DOCX/email extraction is an external collaborator; plain text here
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docqa/internal/models"
)

// Extractor turns raw uploaded bytes into plain extracted text
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// allowedExtensions are the upload types the engine accepts. Extraction for
// the binary formats is assumed to have produced decoded text upstream.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".eml":  true,
	".txt":  true,
	".md":   true,
}

// Allowed reports whether the filename has an accepted extension
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// PlainText treats the uploaded bytes as already-extracted UTF-8 text
type PlainText struct{}

func (PlainText) Extract(filename string, data []byte) (string, error) {
	if !Allowed(filename) {
		return "", fmt.Errorf("%w: unsupported file type %q", models.ErrValidation, filepath.Ext(filename))
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file %s is not valid UTF-8 text", models.ErrValidation, filename)
	}
	return string(data), nil
}
