// Package knowledge provides knowledge-base storage adapters.
// Clean Architecture: Adapter implementing ports.KnowledgeStore.
package knowledge

import (
	"context"
	"sync"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

// MemoryStore is the session-scoped in-memory knowledge base: an append-only
// ordered chunk collection plus the set of ingested source names. A single
// RWMutex gives writers exclusivity and readers consistent snapshots, so a
// retrieval scan never mixes pre- and post-ingestion state.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  []entities.Chunk
	sources map[string]struct{}
	order   []string // Source names in first-seen order
}

// NewMemoryStore creates an empty in-memory knowledge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources: make(map[string]struct{}),
	}
}

// Append adds chunks at the end of the collection and registers their
// source names. Chunks from one call are inserted as one unit.
func (s *MemoryStore) Append(ctx context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = append(s.chunks, chunks...)
	for _, c := range chunks {
		if _, ok := s.sources[c.SourceName]; !ok {
			s.sources[c.SourceName] = struct{}{}
			s.order = append(s.order, c.SourceName)
		}
	}
	return nil
}

// HasSource reports whether a source name has already been ingested.
func (s *MemoryStore) HasSource(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[name]
	return ok, nil
}

// Chunks returns a copy of the full collection in insertion order.
func (s *MemoryStore) Chunks(ctx context.Context) ([]entities.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Sources returns the ingested source names in first-seen order.
func (s *MemoryStore) Sources(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

// Count returns the total number of chunks.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Reset discards all chunks and source names atomically.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.order = nil
	s.sources = make(map[string]struct{})
	return nil
}
