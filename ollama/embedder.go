// Package ollama implements the embedding and completion clients
// against an Ollama server's HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docdex/docdex"
)

// Asymmetric instruction prefixes required by the embedding model.
// Indexed documents and query-time text must use different prefixes.
const (
	documentPrefix = "search_document: "
	queryPrefix    = "search_query: "
)

// truncationLimits are the character caps tried, largest first, when a
// single text is rejected as too large for the model context.
var truncationLimits = []int{2000, 1000, 500}

// DefaultEmbedTimeout bounds one embedding request.
const DefaultEmbedTimeout = 120 * time.Second

// Ensure Embedder implements docdex.Embedder at compile time.
var _ docdex.Embedder = (*Embedder)(nil)

// Embedder embeds text via Ollama's /api/embed endpoint. Rejected
// batches are halved and retried recursively down to single texts;
// a rejected single text is retried at progressively smaller
// truncations before being abandoned.
type Embedder struct {
	baseURL   string
	model     string
	batchSize int
	client    *http.Client
	logger    *slog.Logger
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithEmbedBatchSize sets the request batch size.
func WithEmbedBatchSize(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithEmbedTimeout sets the per-request timeout.
func WithEmbedTimeout(d time.Duration) EmbedderOption {
	return func(e *Embedder) {
		e.client.Timeout = d
	}
}

// WithEmbedLogger sets the logger.
func WithEmbedLogger(logger *slog.Logger) EmbedderOption {
	return func(e *Embedder) {
		e.logger = logger
	}
}

// NewEmbedder creates an Embedder for the given Ollama base URL and
// embedding model.
func NewEmbedder(baseURL, model string, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		baseURL:   baseURL,
		model:     model,
		batchSize: docdex.DefaultEmbedBatchSize,
		client:    &http.Client{Timeout: DefaultEmbedTimeout},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocuments embeds texts with the document prefix in batches.
// Texts abandoned after all retries are reported in failed by input
// index; vectors excludes them and stays aligned with the surviving
// texts in input order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, map[int]bool, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = documentPrefix + t
	}

	vectors := make([][]float32, 0, len(texts))
	failed := make(map[int]bool)

	for start := 0; start < len(prefixed); start += e.batchSize {
		end := start + e.batchSize
		if end > len(prefixed) {
			end = len(prefixed)
		}

		batchVectors, batchFailed, err := e.embedBatch(ctx, prefixed[start:end])
		if err != nil {
			return nil, nil, err
		}
		vectors = append(vectors, batchVectors...)
		for idx := range batchFailed {
			failed[start+idx] = true
		}
		e.logger.Info("embedding batch", "done", end, "total", len(prefixed))
	}

	return vectors, failed, nil
}

// embedBatch embeds one batch, halving on a 400 rejection. Failed
// offsets are relative to the batch.
func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, map[int]bool, error) {
	vectors, status, err := e.request(ctx, texts)
	if err == nil {
		return vectors, nil, nil
	}
	if status != http.StatusBadRequest {
		return nil, nil, err
	}

	if len(texts) > 1 {
		e.logger.Warn("embed batch rejected, halving", "count", len(texts))
		mid := len(texts) / 2

		leftVectors, leftFailed, err := e.embedBatch(ctx, texts[:mid])
		if err != nil {
			return nil, nil, err
		}
		rightVectors, rightFailed, err := e.embedBatch(ctx, texts[mid:])
		if err != nil {
			return nil, nil, err
		}

		failed := make(map[int]bool, len(leftFailed)+len(rightFailed))
		for idx := range leftFailed {
			failed[idx] = true
		}
		for idx := range rightFailed {
			failed[mid+idx] = true
		}
		return append(leftVectors, rightVectors...), failed, nil
	}

	// Single text too large for the model context. Limits apply to the
	// document body so the instruction prefix always survives intact.
	body := strings.TrimPrefix(texts[0], documentPrefix)
	for _, limit := range truncationLimits {
		if len(body) <= limit {
			continue
		}
		cut := truncateRunes(body, limit)
		e.logger.Warn("embed text truncated", "original_chars", len(body), "truncated_to", len(cut))
		vectors, status, err = e.request(ctx, []string{documentPrefix + cut})
		if err == nil {
			return vectors, nil, nil
		}
		if status != http.StatusBadRequest {
			return nil, nil, err
		}
	}

	e.logger.Error("embed text abandoned", "chars", len(body))
	return nil, map[int]bool{0: true}, nil
}

// truncateRunes cuts s to at most limit bytes without splitting a UTF-8
// sequence.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// request performs one /api/embed call. The returned status is non-zero
// only for HTTP-level rejections.
func (e *Embedder) request(ctx context.Context, input []string) ([][]float32, int, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, fmt.Errorf("embed request failed: HTTP %d: %s", resp.StatusCode, msg)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, err
	}
	if len(out.Embeddings) != len(input) {
		return nil, 0, docdex.Errorf(docdex.EINTERNAL, "embed response has %d vectors for %d inputs", len(out.Embeddings), len(input))
	}
	return out.Embeddings, 0, nil
}

// EmbedQuery embeds a single query-time text with the query prefix.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, _, err := e.request(ctx, []string{queryPrefix + text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions detects the embedding dimensionality with a one-word
// probe.
func (e *Embedder) Dimensions(ctx context.Context) (int, error) {
	vectors, _, err := e.request(ctx, []string{"test"})
	if err != nil {
		return 0, err
	}
	dim := len(vectors[0])
	e.logger.Info("detected embedding dimensions", "model", e.model, "dim", dim)
	return dim, nil
}
