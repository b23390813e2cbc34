package mock

import "github.com/docdex/docdex"

var _ docdex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docdex.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML string) (*docdex.ExtractResult, error)
}

func (e *Extractor) Extract(rawHTML string) (*docdex.ExtractResult, error) {
	return e.ExtractFn(rawHTML)
}
