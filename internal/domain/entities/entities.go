// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

// ContentKind identifies the chunking policy for a piece of raw content.
type ContentKind string

const (
	// ContentKindText is free text extracted from a paginated document.
	ContentKindText ContentKind = "free_text"
	// ContentKindTabular is row-oriented data with a header row.
	ContentKindTabular ContentKind = "tabular"
)

// RawContent carries already-extracted document content into the chunker.
// The field matching the ContentKind is consulted; the other is ignored.
type RawContent struct {
	Text string
	Rows [][]string
}

// Chunk is the atomic unit of retrieval: a bounded piece of one document.
// Never mutated after ingestion. For a given SourceName, Position values
// form a contiguous 0-based sequence.
type Chunk struct {
	SourceName string // Originating document, unique per upload, used for citation
	Content    string // Never empty after chunking policy is applied
	Position   int    // 0-based index among chunks from the same source
}

// ChatMessage represents a conversation turn.
type ChatMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// ChatRequest represents a query with conversation context.
type ChatRequest struct {
	Query   string
	History []ChatMessage
}

// ChatResponse represents the LLM's answer with the chunks that grounded it.
type ChatResponse struct {
	Answer  string
	Sources []Chunk
}

// IngestResult reports the outcome of ingesting one source.
type IngestResult struct {
	SourceName string
	Chunks     int  // Number of chunks added
	Skipped    bool // True when the source name was already present
}
