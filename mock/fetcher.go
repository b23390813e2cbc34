package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docdex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	return f.FetchFn(ctx, url)
}
