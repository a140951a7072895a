// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code - just pure business logic.
package usecases

import (
	"fmt"
	"strings"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

// DefaultTextChunkSize is the maximum character length of a free-text chunk.
const DefaultTextChunkSize = 4000

// DefaultRowsPerChunk is the number of data rows rendered into one tabular chunk.
const DefaultRowsPerChunk = 30

// fieldSeparator joins the field:value pairs of one rendered row.
const fieldSeparator = " | "

// Chunker splits extracted content into an ordered sequence of bounded chunks.
// Splitting is deterministic: identical input always yields byte-identical output.
type Chunker struct {
	textChunkSize int
	rowsPerChunk  int
}

// NewChunker creates a Chunker with the given policy sizes.
// Non-positive values fall back to the reference defaults.
func NewChunker(textChunkSize, rowsPerChunk int) *Chunker {
	if textChunkSize <= 0 {
		textChunkSize = DefaultTextChunkSize
	}
	if rowsPerChunk <= 0 {
		rowsPerChunk = DefaultRowsPerChunk
	}
	return &Chunker{
		textChunkSize: textChunkSize,
		rowsPerChunk:  rowsPerChunk,
	}
}

// Chunk splits raw content into chunks tagged with sourceName and their
// 0-based position. An unrecognized kind fails with ErrUnsupportedFormat and
// produces no chunks.
func (c *Chunker) Chunk(sourceName string, kind entities.ContentKind, raw entities.RawContent) ([]entities.Chunk, error) {
	switch kind {
	case entities.ContentKindText:
		return c.chunkText(sourceName, raw.Text), nil
	case entities.ContentKindTabular:
		return c.chunkRows(sourceName, raw.Rows), nil
	default:
		return nil, fmt.Errorf("%w: content kind %q", entities.ErrUnsupportedFormat, string(kind))
	}
}

// chunkText slices text into contiguous, non-overlapping substrings of at
// most textChunkSize characters. Boundaries are pure character offsets; the
// concatenation of all chunks reconstructs the input exactly.
func (c *Chunker) chunkText(sourceName, text string) []entities.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []entities.Chunk
	for start := 0; start < len(text); start += c.textChunkSize {
		end := start + c.textChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, entities.Chunk{
			SourceName: sourceName,
			Content:    text[start:end],
			Position:   len(chunks),
		})
	}
	return chunks
}

// chunkRows renders header+rows into header-labeled blocks of at most
// rowsPerChunk data rows each. Blank rows are discarded before batching.
func (c *Chunker) chunkRows(sourceName string, rows [][]string) []entities.Chunk {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]

	var data [][]string
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil
	}

	var chunks []entities.Chunk
	for start := 0; start < len(data); start += c.rowsPerChunk {
		end := start + c.rowsPerChunk
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, entities.Chunk{
			SourceName: sourceName,
			Content:    renderBatch(header, data[start:end]),
			Position:   len(chunks),
		})
	}
	return chunks
}

// renderBatch writes the field names once, then one line per row of
// "field: value" pairs. Rows shorter than the header render missing
// trailing fields as empty.
func renderBatch(header []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("Columns: ")
	sb.WriteString(strings.Join(header, ", "))
	for _, row := range rows {
		sb.WriteString("\n")
		for i, field := range header {
			if i > 0 {
				sb.WriteString(fieldSeparator)
			}
			sb.WriteString(field)
			sb.WriteString(": ")
			if i < len(row) {
				sb.WriteString(row[i])
			}
		}
	}
	return sb.String()
}

func isBlankRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
