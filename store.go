package docdex

import "context"

// ScoredChunk is a search match: the stored payload plus similarity
// score.
type ScoredChunk struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// VectorStore is the external vector database. It must tolerate
// concurrent upserts and deletes from different sources; cross-source
// point-id collisions are impossible because chunk ids are keyed by
// source id.
type VectorStore interface {
	// EnsureCollection creates the collection with the given vector
	// dimensionality and the payload indexes on filterable provenance
	// fields, if it does not already exist.
	EnsureCollection(ctx context.Context, dim int) error

	// DeleteBySource removes all points for a source id (full reindex).
	DeleteBySource(ctx context.Context, sourceID string) error

	// ExistingHashes scrolls all points for a source id and returns
	// their text_hash values (incremental dedup).
	ExistingHashes(ctx context.Context, sourceID string) (map[string]bool, error)

	// Upsert writes (id, vector, payload) triples in batches.
	// chunks and vectors must be aligned and the same length.
	Upsert(ctx context.Context, chunks []*Chunk, vectors [][]float32) (int, error)

	// Search returns the topK nearest neighbors of vector.
	Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error)

	// Count returns the number of points in the collection.
	Count(ctx context.Context) (int, error)
}
