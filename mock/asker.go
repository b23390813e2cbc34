package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Asker = (*Asker)(nil)

// Asker is a mock implementation of docdex.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (*docdex.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*docdex.Answer, error) {
	return a.AskFn(ctx, question)
}
