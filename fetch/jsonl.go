package fetch

import (
	"context"
	"os"

	"github.com/docdex/docdex"
)

// Ensure JSONLAdapter implements docdex.SourceAdapter at compile time.
var _ docdex.SourceAdapter = (*JSONLAdapter)(nil)

// JSONLAdapter serves flat-record dataset sources: the location is
// already a local file.
type JSONLAdapter struct{}

// FetchSource returns the dataset file itself, or nothing when it does
// not exist.
func (a *JSONLAdapter) FetchSource(_ context.Context, src *docdex.Source, _ int) ([]string, error) {
	if _, err := os.Stat(src.Location); err != nil {
		return nil, nil
	}
	return []string{src.Location}, nil
}
