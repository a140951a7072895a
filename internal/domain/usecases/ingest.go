// Package usecases - ingest.go feeds extracted documents through the chunker
// into the knowledge base.
package usecases

import (
	"context"
	"fmt"

	"github.com/docchat/docchat-go/internal/domain/entities"
	"github.com/docchat/docchat-go/internal/domain/ports"
	"github.com/docchat/docchat-go/internal/logger"
)

// IngestUseCase handles document ingestion into the knowledge base.
// Ingestion is all-or-nothing per source: a chunking failure inserts nothing
// and does not register the source name.
type IngestUseCase struct {
	chunker   *Chunker
	store     ports.KnowledgeStore
	extractor ports.DocumentExtractor
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
// The extractor may be nil when callers only use Ingest with pre-extracted
// content.
func NewIngestUseCase(chunker *Chunker, store ports.KnowledgeStore, extractor ports.DocumentExtractor) *IngestUseCase {
	return &IngestUseCase{
		chunker:   chunker,
		store:     store,
		extractor: extractor,
	}
}

// Ingest chunks raw content and appends the result to the knowledge base.
// A source name already present is skipped silently (Skipped set in the
// result) so batches with some already-indexed files keep going.
func (uc *IngestUseCase) Ingest(ctx context.Context, sourceName string, kind entities.ContentKind, raw entities.RawContent) (entities.IngestResult, error) {
	result := entities.IngestResult{SourceName: sourceName}

	exists, err := uc.store.HasSource(ctx, sourceName)
	if err != nil {
		return result, fmt.Errorf("checking source %q: %w", sourceName, err)
	}
	if exists {
		logger.Debug("Source %q already ingested, skipping", sourceName)
		result.Skipped = true
		return result, nil
	}

	chunks, err := uc.chunker.Chunk(sourceName, kind, raw)
	if err != nil {
		return result, err
	}
	if len(chunks) == 0 {
		logger.Debug("Source %q produced no chunks", sourceName)
		return result, nil
	}

	if err := uc.store.Append(ctx, chunks); err != nil {
		return result, fmt.Errorf("storing chunks for %q: %w", sourceName, err)
	}

	logger.Debug("Ingested %q: %d chunks", sourceName, len(chunks))
	result.Chunks = len(chunks)
	return result, nil
}

// IngestPath extracts a file from disk and ingests it.
func (uc *IngestUseCase) IngestPath(ctx context.Context, path string) (entities.IngestResult, error) {
	sourceName, kind, raw, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return entities.IngestResult{SourceName: sourceName}, err
	}
	return uc.Ingest(ctx, sourceName, kind, raw)
}

// IngestBatch ingests several files. One failing file does not block the
// others; its error is recorded and the batch continues.
func (uc *IngestUseCase) IngestBatch(ctx context.Context, paths []string) ([]entities.IngestResult, []error) {
	results := make([]entities.IngestResult, 0, len(paths))
	var errs []error
	for _, path := range paths {
		res, err := uc.IngestPath(ctx, path)
		if err != nil {
			logger.Warn("Ingest failed for %s: %v", path, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// Reset discards the whole knowledge base.
func (uc *IngestUseCase) Reset(ctx context.Context) error {
	return uc.store.Reset(ctx)
}
