// Package extractor provides document extraction adapters.
// Clean Architecture: Adapters implementing ports.DocumentExtractor. The
// core never reads files; it consumes the text and rows produced here.
package extractor

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

// FileExtractor maps files to chunker input by extension.
type FileExtractor struct{}

// NewFileExtractor creates an extractor covering text, PDF, and delimited files.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract reads the file at path and returns its source name (the file base
// name), content kind, and raw content. Unknown extensions fail with
// ErrUnsupportedFormat naming the extension.
func (e *FileExtractor) Extract(ctx context.Context, path string) (string, entities.ContentKind, entities.RawContent, error) {
	sourceName := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md", ".markdown":
		text, err := extractText(path)
		if err != nil {
			return sourceName, "", entities.RawContent{}, err
		}
		return sourceName, entities.ContentKindText, entities.RawContent{Text: text}, nil

	case ".pdf":
		text, err := extractPDF(path)
		if err != nil {
			return sourceName, "", entities.RawContent{}, err
		}
		return sourceName, entities.ContentKindText, entities.RawContent{Text: text}, nil

	case ".csv":
		rows, err := extractDelimited(path, ',')
		if err != nil {
			return sourceName, "", entities.RawContent{}, err
		}
		return sourceName, entities.ContentKindTabular, entities.RawContent{Rows: rows}, nil

	case ".tsv":
		rows, err := extractDelimited(path, '\t')
		if err != nil {
			return sourceName, "", entities.RawContent{}, err
		}
		return sourceName, entities.ContentKindTabular, entities.RawContent{Rows: rows}, nil

	default:
		return sourceName, "", entities.RawContent{}, fmt.Errorf("%w: extension %q", entities.ErrUnsupportedFormat, ext)
	}
}

// SupportedExtensions returns file extensions this extractor handles.
func (e *FileExtractor) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown", ".pdf", ".csv", ".tsv"}
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractPDF pulls the plain text out of a PDF file.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return cleanContent(sb.String()), nil
}

// extractDelimited parses a header+rows delimited file. Field counts may
// vary per record; blank-line handling is left to the chunking policy.
func extractDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited file: %w", err)
	}
	return rows, nil
}

// cleanContent strips binary garbage that PDF extraction can leave behind.
func cleanContent(content string) string {
	var cleaned strings.Builder
	for _, r := range content {
		if r >= 32 && r < 127 || r == '\n' || r == '\t' || r > 127 {
			cleaned.WriteRune(r)
		}
	}
	return strings.TrimSpace(cleaned.String())
}
