// Package qdrant implements the vector store against Qdrant's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/docdex/docdex"
)

// DefaultCollection is the collection name used when none is
// configured.
const DefaultCollection = "docdex"

// DefaultRequestTimeout bounds one store request.
const DefaultRequestTimeout = 60 * time.Second

// scrollPageSize is the page size for hash and export scrolls.
const scrollPageSize = 1000

// payloadIndexes are the filterable payload fields created alongside
// the collection.
var payloadIndexes = []struct {
	field  string
	schema string
}{
	{"domain", "keyword"},
	{"source_id", "keyword"},
	{"source_type", "keyword"},
	{"component", "keyword"},
	{"tags", "keyword"},
	{"priority", "integer"},
	{"text_hash", "keyword"},
	{"engine", "keyword"},
	{"topic", "keyword"},
}

// Ensure Store implements docdex.VectorStore at compile time.
var _ docdex.VectorStore = (*Store)(nil)

// Store talks to a Qdrant server over its REST API.
type Store struct {
	baseURL    string
	collection string
	batchSize  int
	client     *http.Client
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCollection sets the collection name.
func WithCollection(name string) Option {
	return func(s *Store) {
		s.collection = name
	}
}

// WithUpsertBatchSize sets the upsert batch size.
func WithUpsertBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.client.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store for the given Qdrant base URL.
func NewStore(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL:    baseURL,
		collection: DefaultCollection,
		batchSize:  docdex.DefaultUpsertBatchSize,
		client:     &http.Client{Timeout: DefaultRequestTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// do performs one JSON request against the Qdrant API and decodes the
// response into out when non-nil.
func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return docdex.Errorf(docdex.EUNAVAILABLE, "vector store unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("vector store request failed: %s %s: HTTP %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// sourceFilter matches all points of one source.
func sourceFilter(sourceID string) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{"key": "source_id", "match": map[string]any{"value": sourceID}},
		},
	}
}

// EnsureCollection creates the collection with cosine distance and the
// payload indexes if it does not already exist.
func (s *Store) EnsureCollection(ctx context.Context, dim int) error {
	var exists struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodGet, "/collections/"+s.collection+"/exists", nil, &exists); err != nil {
		return err
	}
	if exists.Result.Exists {
		s.logger.Info("collection exists", "name", s.collection)
		return nil
	}

	s.logger.Info("creating collection", "name", s.collection, "dim", dim)
	create := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, "/collections/"+s.collection, create, nil); err != nil {
		return err
	}

	for _, idx := range payloadIndexes {
		body := map[string]any{
			"field_name":   idx.field,
			"field_schema": idx.schema,
		}
		if err := s.do(ctx, http.MethodPut, "/collections/"+s.collection+"/index", body, nil); err != nil {
			return err
		}
	}
	s.logger.Info("payload indexes created", "collection", s.collection)
	return nil
}

// DeleteBySource removes all points for a source id.
func (s *Store) DeleteBySource(ctx context.Context, sourceID string) error {
	s.logger.Info("deleting source points", "source_id", sourceID)
	body := map[string]any{"filter": sourceFilter(sourceID)}
	return s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/delete", body, nil)
}

type scrollResponse struct {
	Result struct {
		Points []struct {
			ID      any            `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
		NextPageOffset any `json:"next_page_offset"`
	} `json:"result"`
}

// ExistingHashes scrolls all points of a source, fetching only their
// text_hash payload field, until the cursor is exhausted.
func (s *Store) ExistingHashes(ctx context.Context, sourceID string) (map[string]bool, error) {
	hashes := make(map[string]bool)
	var offset any

	for {
		body := map[string]any{
			"filter":       sourceFilter(sourceID),
			"limit":        scrollPageSize,
			"with_payload": []string{"text_hash"},
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}

		var out scrollResponse
		if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/scroll", body, &out); err != nil {
			return nil, err
		}

		for _, p := range out.Result.Points {
			if h, _ := p.Payload["text_hash"].(string); h != "" {
				hashes[h] = true
			}
		}

		if out.Result.NextPageOffset == nil {
			return hashes, nil
		}
		offset = out.Result.NextPageOffset
	}
}

// Upsert writes aligned (chunk, vector) pairs in batches and returns
// the number of points written.
func (s *Store) Upsert(ctx context.Context, chunks []*docdex.Chunk, vectors [][]float32) (int, error) {
	if len(chunks) != len(vectors) {
		return 0, docdex.Errorf(docdex.EINTERNAL, "upsert misalignment: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	upserted := 0
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		points := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, map[string]any{
				"id":      chunks[i].ID,
				"vector":  vectors[i],
				"payload": chunks[i].Payload(),
			})
		}

		body := map[string]any{"points": points}
		if err := s.do(ctx, http.MethodPut, "/collections/"+s.collection+"/points", body, nil); err != nil {
			return upserted, err
		}
		upserted += len(points)
		s.logger.Debug("upserted batch", "done", upserted, "total", len(chunks))
	}

	s.logger.Info("upserted", "count", upserted)
	return upserted, nil
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float32        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search returns the topK nearest neighbors of vector with payloads.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]docdex.ScoredChunk, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	var out searchResponse
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/search", body, &out); err != nil {
		return nil, err
	}

	matches := make([]docdex.ScoredChunk, 0, len(out.Result))
	for _, r := range out.Result {
		matches = append(matches, docdex.ScoredChunk{
			ID:      fmt.Sprint(r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return matches, nil
}

// Count returns the exact number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var out struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	body := map[string]any{"exact": true}
	if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/count", body, &out); err != nil {
		return 0, err
	}
	return out.Result.Count, nil
}
