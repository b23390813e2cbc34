package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.SourceAdapter = (*SourceAdapter)(nil)

// SourceAdapter is a mock implementation of docdex.SourceAdapter.
type SourceAdapter struct {
	FetchSourceFn func(ctx context.Context, src *docdex.Source, maxItems int) ([]string, error)
}

func (a *SourceAdapter) FetchSource(ctx context.Context, src *docdex.Source, maxItems int) ([]string, error) {
	return a.FetchSourceFn(ctx, src, maxItems)
}
