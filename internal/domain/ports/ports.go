// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

// KnowledgeStore holds every chunk ingested in the current session.
// Insertion order is preserved and chunks are append-only; the store is
// cleared only by Reset. Implementations must serialize writes against
// reads so a scan never observes a partially inserted source.
type KnowledgeStore interface {
	// Append adds chunks at the end of the collection and registers their
	// source names.
	Append(ctx context.Context, chunks []entities.Chunk) error

	// HasSource reports whether a source name has already been ingested.
	HasSource(ctx context.Context, name string) (bool, error)

	// Chunks returns a consistent snapshot of the full collection in
	// insertion order. Callers own the returned slice.
	Chunks(ctx context.Context) ([]entities.Chunk, error)

	// Sources returns the ingested source names in first-seen order.
	Sources(ctx context.Context) ([]string, error)

	// Count returns the total number of chunks.
	Count(ctx context.Context) (int, error)

	// Reset discards all chunks and source names atomically.
	Reset(ctx context.Context) error
}

// LLMService generates text responses from a language model.
// This is the answer-generation collaborator: it receives the query, the
// rendered grounding context, and recent history, and produces prose.
type LLMService interface {
	// Generate produces a response for the given prompt.
	Generate(ctx context.Context, prompt string, context []string) (string, error)

	// GenerateStream produces a streaming response (for real-time UI).
	// Returns a channel of StreamTokens for token-by-token output.
	GenerateStream(ctx context.Context, prompt string, context []string) (<-chan StreamToken, error)
}

// StreamToken represents a single token in a streaming LLM response.
type StreamToken struct {
	Content string
	Done    bool
	Error   error
}

// DocumentExtractor turns a file on disk into chunker input. Extraction of
// text from binary formats and parsing of delimited files both live behind
// this boundary; the core only ever sees extracted text or rows.
type DocumentExtractor interface {
	// Extract reads the file and returns its source name, content kind,
	// and raw content.
	Extract(ctx context.Context, path string) (string, entities.ContentKind, entities.RawContent, error)

	// SupportedExtensions returns file extensions this extractor handles.
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
