package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docdex.Embedder.
type Embedder struct {
	EmbedDocumentsFn func(ctx context.Context, texts []string) ([][]float32, map[int]bool, error)
	EmbedQueryFn     func(ctx context.Context, text string) ([]float32, error)
	DimensionsFn     func(ctx context.Context) (int, error)
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, map[int]bool, error) {
	return e.EmbedDocumentsFn(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedQueryFn(ctx, text)
}

func (e *Embedder) Dimensions(ctx context.Context) (int, error) {
	return e.DimensionsFn(ctx)
}
