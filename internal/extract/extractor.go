// Package extract reads document files and returns their plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/wali/internal/models"
)

// UnknownFileType is reported for paths without an extension.
const UnknownFileType = "unknown"

// Func converts raw file bytes to text.
type Func func(content []byte) (string, error)

// Extractor maps lower-case extensions (with the leading dot) to extraction functions.
// Extensions without an entry are read as plain text.
type Extractor struct {
	formats map[string]Func
}

// NewExtractor returns an Extractor for PDF, Office, OpenDocument, RTF and plain text.
func NewExtractor() *Extractor {
	return &Extractor{formats: map[string]Func{
		".pdf":  extractPDF,
		".docx": extractDOCX,
		".xlsx": extractExcel,
		".pptx": extractPPTX,
		".odp":  extractODF,
		".ods":  extractODF,
		".odt":  extractWithCat,
		".rtf":  extractWithCat,
	}}
}

// Register adds or replaces the function used for ext.
func (e *Extractor) Register(ext string, fn Func) {
	e.formats[normalizeExt(ext)] = fn
}

// Binary reports whether ext has a dedicated extractor.
func (e *Extractor) Binary(ext string) bool {
	_, ok := e.formats[normalizeExt(ext)]
	return ok
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on ext (".pdf", "pdf" and ".PDF" are equivalent).
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	if fn, ok := e.formats[normalizeExt(ext)]; ok {
		return fn(content)
	}
	return extractPlain(content)
}

// Load reads a file into a DocumentInput named after its base name.
func (e *Extractor) Load(path string) (*models.DocumentInput, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file: %s", models.ErrInvalidInput, absPath)
	}
	text, err := e.Extract(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(absPath), err)
	}
	return &models.DocumentInput{
		Name:       filepath.Base(absPath),
		Content:    text,
		FileType:   FileType(absPath),
		FileSize:   info.Size(),
		SourcePath: absPath,
	}, nil
}

// FileType returns the lower-case extension of path without the dot, or UnknownFileType.
func FileType(path string) string {
	ext := strings.TrimPrefix(normalizeExt(filepath.Ext(path)), ".")
	if ext == "" {
		return UnknownFileType
	}
	return ext
}

// Allowed reports whether path's extension is in exts. An empty list allows everything.
func Allowed(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := normalizeExt(filepath.Ext(path))
	for _, a := range exts {
		if normalizeExt(a) == ext {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
