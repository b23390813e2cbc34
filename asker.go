package docdex

import "context"

// SourceRef cites one retrieved chunk in an answer.
type SourceRef struct {
	URI     string `json:"uri"`
	Title   string `json:"title"`
	Section string `json:"section"`
	Engine  string `json:"engine,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	Answer   string      `json:"answer"`
	Sources  []SourceRef `json:"sources"`
	TimingMS int64       `json:"timing_ms"`
}

// Asker provides natural language question answering over the indexed
// documentation.
type Asker interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}
