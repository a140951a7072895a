package usecases

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

func textContent(s string) entities.RawContent {
	return entities.RawContent{Text: s}
}

func rowContent(rows [][]string) entities.RawContent {
	return entities.RawContent{Rows: rows}
}

func TestChunker_TextRoundTrip(t *testing.T) {
	c := NewChunker(4000, 30)
	input := strings.Repeat("lorem ipsum dolor sit amet ", 350) // ~9450 chars

	chunks, err := c.Chunk("doc.pdf", entities.ContentKindText, textContent(input))
	require.NoError(t, err)

	expected := (len(input) + 3999) / 4000
	require.Len(t, chunks, expected)

	var sb strings.Builder
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.Equal(t, "doc.pdf", chunk.SourceName)
		assert.NotEmpty(t, chunk.Content)
		sb.WriteString(chunk.Content)
	}
	assert.Equal(t, input, sb.String())
}

func TestChunker_TextExactMultiple(t *testing.T) {
	c := NewChunker(4000, 30)
	input := strings.Repeat("a", 8000)

	chunks, err := c.Chunk("big.txt", entities.ContentKindText, textContent(input))
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[1].Position)
	assert.Len(t, chunks[0].Content, 4000)
	assert.Len(t, chunks[1].Content, 4000)
}

func TestChunker_TextShortInput(t *testing.T) {
	c := NewChunker(4000, 30)

	chunks, err := c.Chunk("note.md", entities.ContentKindText, textContent("hello"))
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0].Content)
}

func TestChunker_TextWhitespaceOnly(t *testing.T) {
	c := NewChunker(4000, 30)

	for _, input := range []string{"", "   ", "\n\t \n"} {
		chunks, err := c.Chunk("empty.txt", entities.ContentKindText, textContent(input))
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunker_TabularBatching(t *testing.T) {
	c := NewChunker(4000, 30)

	rows := [][]string{{"name", "amount"}}
	for i := 0; i < 65; i++ {
		rows = append(rows, []string{"item", "10"})
	}

	chunks, err := c.Chunk("ledger.csv", entities.ContentKindTabular, rowContent(rows))
	require.NoError(t, err)

	require.Len(t, chunks, 3) // ceil(65/30)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.True(t, strings.HasPrefix(chunk.Content, "Columns: name, amount"))
	}
	assert.Equal(t, 30, strings.Count(chunks[0].Content, "\n"))
	assert.Equal(t, 5, strings.Count(chunks[2].Content, "\n"))
}

func TestChunker_TabularRendering(t *testing.T) {
	c := NewChunker(4000, 30)

	rows := [][]string{
		{"name", "age", "city"},
		{"Alice", "30", "Berlin"},
		{"Bob"}, // Short row: missing trailing fields render empty
	}

	chunks, err := c.Chunk("people.csv", entities.ContentKindTabular, rowContent(rows))
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	lines := strings.Split(chunks[0].Content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Columns: name, age, city", lines[0])
	assert.Equal(t, "name: Alice | age: 30 | city: Berlin", lines[1])
	assert.Equal(t, "name: Bob | age:  | city: ", lines[2])
}

func TestChunker_TabularDiscardsBlankRows(t *testing.T) {
	c := NewChunker(4000, 2)

	rows := [][]string{
		{"col"},
		{"a"},
		{},
		{""},
		{"b"},
		{"  "},
		{"c"},
	}

	chunks, err := c.Chunk("data.csv", entities.ContentKindTabular, rowContent(rows))
	require.NoError(t, err)

	// 3 data rows after blank removal, batches of 2
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0].Content, "col: a")
	assert.Contains(t, chunks[0].Content, "col: b")
	assert.Contains(t, chunks[1].Content, "col: c")
}

func TestChunker_TabularHeaderOnly(t *testing.T) {
	c := NewChunker(4000, 30)

	chunks, err := c.Chunk("empty.csv", entities.ContentKindTabular, rowContent([][]string{{"a", "b"}}))
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.Chunk("none.csv", entities.ContentKindTabular, rowContent(nil))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunker_UnsupportedKind(t *testing.T) {
	c := NewChunker(4000, 30)

	chunks, err := c.Chunk("weird.bin", entities.ContentKind("binary"), textContent("data"))

	require.ErrorIs(t, err, entities.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "binary")
	assert.Empty(t, chunks)
}

func TestChunker_Deterministic(t *testing.T) {
	c := NewChunker(100, 2)
	text := strings.Repeat("determinism matters for reproducible tests. ", 20)
	rows := [][]string{{"k", "v"}, {"x", "1"}, {"y", "2"}, {"z", "3"}}

	first, err := c.Chunk("a.txt", entities.ContentKindText, textContent(text))
	require.NoError(t, err)
	second, err := c.Chunk("a.txt", entities.ContentKindText, textContent(text))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	firstRows, err := c.Chunk("a.csv", entities.ContentKindTabular, rowContent(rows))
	require.NoError(t, err)
	secondRows, err := c.Chunk("a.csv", entities.ContentKindTabular, rowContent(rows))
	require.NoError(t, err)
	assert.Equal(t, firstRows, secondRows)
}

func TestChunker_DefaultSizes(t *testing.T) {
	c := NewChunker(0, -1)
	assert.Equal(t, DefaultTextChunkSize, c.textChunkSize)
	assert.Equal(t, DefaultRowsPerChunk, c.rowsPerChunk)
}
