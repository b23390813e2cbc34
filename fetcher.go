package docdex

import "context"

// Fetcher retrieves the body of a single URL.
type Fetcher interface {
	// Fetch performs a GET and returns the response body and content
	// type. Non-2xx responses are errors. The context controls timeout
	// and cancellation.
	Fetch(ctx context.Context, url string) (body []byte, contentType string, err error)
}

// SourceAdapter materializes a source's content as local files. Files
// are ephemeral: owned by the adapter that produced them and consumed
// once by parsing.
type SourceAdapter interface {
	// FetchSource returns paths to the local files for src. MaxItems > 0
	// truncates the list.
	FetchSource(ctx context.Context, src *Source, maxItems int) ([]string, error)
}
