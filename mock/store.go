package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of docdex.VectorStore.
type VectorStore struct {
	EnsureCollectionFn func(ctx context.Context, dim int) error
	DeleteBySourceFn   func(ctx context.Context, sourceID string) error
	ExistingHashesFn   func(ctx context.Context, sourceID string) (map[string]bool, error)
	UpsertFn           func(ctx context.Context, chunks []*docdex.Chunk, vectors [][]float32) (int, error)
	SearchFn           func(ctx context.Context, vector []float32, topK int) ([]docdex.ScoredChunk, error)
	CountFn            func(ctx context.Context) (int, error)
}

func (s *VectorStore) EnsureCollection(ctx context.Context, dim int) error {
	return s.EnsureCollectionFn(ctx, dim)
}

func (s *VectorStore) DeleteBySource(ctx context.Context, sourceID string) error {
	return s.DeleteBySourceFn(ctx, sourceID)
}

func (s *VectorStore) ExistingHashes(ctx context.Context, sourceID string) (map[string]bool, error) {
	return s.ExistingHashesFn(ctx, sourceID)
}

func (s *VectorStore) Upsert(ctx context.Context, chunks []*docdex.Chunk, vectors [][]float32) (int, error) {
	return s.UpsertFn(ctx, chunks, vectors)
}

func (s *VectorStore) Search(ctx context.Context, vector []float32, topK int) ([]docdex.ScoredChunk, error) {
	return s.SearchFn(ctx, vector, topK)
}

func (s *VectorStore) Count(ctx context.Context) (int, error) {
	return s.CountFn(ctx)
}
