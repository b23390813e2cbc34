package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docdex/docdex"
)

// Ensure LoggingVectorStore implements docdex.VectorStore.
var _ docdex.VectorStore = (*LoggingVectorStore)(nil)

// LoggingVectorStore wraps a VectorStore with operation logging.
type LoggingVectorStore struct {
	next   docdex.VectorStore
	logger *slog.Logger
}

// NewLoggingVectorStore creates a new LoggingVectorStore.
func NewLoggingVectorStore(next docdex.VectorStore, logger *slog.Logger) *LoggingVectorStore {
	return &LoggingVectorStore{next: next, logger: logger}
}

// EnsureCollection delegates to the wrapped store and logs the
// operation.
func (s *LoggingVectorStore) EnsureCollection(ctx context.Context, dim int) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("ensure collection", "dim", dim, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.EnsureCollection(ctx, dim)
}

// DeleteBySource delegates to the wrapped store and logs the operation.
func (s *LoggingVectorStore) DeleteBySource(ctx context.Context, sourceID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete by source", "source_id", sourceID, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.DeleteBySource(ctx, sourceID)
}

// ExistingHashes delegates to the wrapped store and logs the operation.
func (s *LoggingVectorStore) ExistingHashes(ctx context.Context, sourceID string) (hashes map[string]bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("existing hashes", "source_id", sourceID, "count", len(hashes), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.ExistingHashes(ctx, sourceID)
}

// Upsert delegates to the wrapped store and logs the operation.
func (s *LoggingVectorStore) Upsert(ctx context.Context, chunks []*docdex.Chunk, vectors [][]float32) (upserted int, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("upsert", "chunks", len(chunks), "upserted", upserted, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Upsert(ctx, chunks, vectors)
}

// Search delegates to the wrapped store and logs the operation.
func (s *LoggingVectorStore) Search(ctx context.Context, vector []float32, topK int) (matches []docdex.ScoredChunk, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search", "top_k", topK, "matches", len(matches), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Search(ctx, vector, topK)
}

// Count delegates to the wrapped store and logs the operation.
func (s *LoggingVectorStore) Count(ctx context.Context) (count int, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("count", "count", count, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Count(ctx)
}
