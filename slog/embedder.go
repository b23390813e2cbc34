package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docdex/docdex"
)

// Ensure LoggingEmbedder implements docdex.Embedder.
var _ docdex.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with operation logging.
type LoggingEmbedder struct {
	next   docdex.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next docdex.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// EmbedDocuments delegates to the wrapped embedder and logs the
// operation.
func (e *LoggingEmbedder) EmbedDocuments(ctx context.Context, texts []string) (vectors [][]float32, failed map[int]bool, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed documents",
			"texts", len(texts),
			"vectors", len(vectors),
			"failed", len(failed),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedDocuments(ctx, texts)
}

// EmbedQuery delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) EmbedQuery(ctx context.Context, text string) (vector []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed query", "chars", len(text), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return e.next.EmbedQuery(ctx, text)
}

// Dimensions delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Dimensions(ctx context.Context) (dim int, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("detect dimensions", "dim", dim, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return e.next.Dimensions(ctx)
}
