package docdex

import "context"

// Embedder converts text into vectors via a remote embedding service.
// The document and query paths use different instruction prefixes; the
// asymmetry is part of the embedding model's contract and must be
// preserved.
type Embedder interface {
	// EmbedDocuments returns one vector per input text, in input order.
	// Texts whose embedding was abandoned after retries are reported in
	// failed (by input index); vectors excludes them, so
	// len(vectors) == len(texts) - len(failed).
	EmbedDocuments(ctx context.Context, texts []string) (vectors [][]float32, failed map[int]bool, err error)

	// EmbedQuery embeds a single query-time text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions detects the embedding dimensionality by encoding a
	// one-word probe.
	Dimensions(ctx context.Context) (int, error)
}
