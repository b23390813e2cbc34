package qdrant_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func writeResult(w http.ResponseWriter, result any) {
	json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok"})
}

func TestEnsureCollection(t *testing.T) {
	t.Parallel()

	t.Run("skips creation when the collection exists", func(t *testing.T) {
		t.Parallel()

		var created bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/collections/docdex/exists":
				writeResult(w, map[string]any{"exists": true})
			default:
				created = true
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
		require.NoError(t, store.EnsureCollection(context.Background(), 768))
		assert.False(t, created)
	})

	t.Run("creates the collection and payload indexes", func(t *testing.T) {
		t.Parallel()

		var createBody map[string]any
		var indexFields []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/collections/docs/exists":
				writeResult(w, map[string]any{"exists": false})
			case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
				createBody = decodeBody(t, r)
				writeResult(w, true)
			case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/index":
				body := decodeBody(t, r)
				indexFields = append(indexFields, body["field_name"].(string))
				writeResult(w, true)
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		store := qdrant.NewStore(srv.URL, qdrant.WithCollection("docs"), qdrant.WithLogger(quietLogger()))
		require.NoError(t, store.EnsureCollection(context.Background(), 768))

		vectors := createBody["vectors"].(map[string]any)
		assert.Equal(t, float64(768), vectors["size"])
		assert.Equal(t, "Cosine", vectors["distance"])

		assert.Contains(t, indexFields, "source_id")
		assert.Contains(t, indexFields, "text_hash")
		assert.Contains(t, indexFields, "priority")
		assert.Contains(t, indexFields, "domain")
	})

	t.Run("unreachable server reports unavailable", func(t *testing.T) {
		t.Parallel()

		store := qdrant.NewStore("http://127.0.0.1:1", qdrant.WithLogger(quietLogger()))
		err := store.EnsureCollection(context.Background(), 768)
		require.Error(t, err)
		assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
	})
}

func TestDeleteBySource(t *testing.T) {
	t.Parallel()

	var deleteBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/collections/docdex/points/delete", r.URL.Path)
		deleteBody = decodeBody(t, r)
		writeResult(w, true)
	}))
	defer srv.Close()

	store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
	require.NoError(t, store.DeleteBySource(context.Background(), "pg-docs"))

	filter := deleteBody["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	clause := must[0].(map[string]any)
	assert.Equal(t, "source_id", clause["key"])
	assert.Equal(t, "pg-docs", clause["match"].(map[string]any)["value"])
}

func TestExistingHashes(t *testing.T) {
	t.Parallel()

	t.Run("follows the scroll cursor across pages", func(t *testing.T) {
		t.Parallel()

		var offsets []any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/collections/docdex/points/scroll", r.URL.Path)
			body := decodeBody(t, r)
			offsets = append(offsets, body["offset"])

			if body["offset"] == nil {
				writeResult(w, map[string]any{
					"points": []map[string]any{
						{"id": "p1", "payload": map[string]any{"text_hash": "aaa"}},
						{"id": "p2", "payload": map[string]any{"text_hash": "bbb"}},
					},
					"next_page_offset": "p3",
				})
				return
			}
			writeResult(w, map[string]any{
				"points": []map[string]any{
					{"id": "p3", "payload": map[string]any{"text_hash": "ccc"}},
				},
				"next_page_offset": nil,
			})
		}))
		defer srv.Close()

		store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
		hashes, err := store.ExistingHashes(context.Background(), "pg-docs")
		require.NoError(t, err)

		assert.Equal(t, map[string]bool{"aaa": true, "bbb": true, "ccc": true}, hashes)
		require.Len(t, offsets, 2)
		assert.Nil(t, offsets[0])
		assert.Equal(t, "p3", offsets[1])
	})

	t.Run("skips points without a text hash", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeResult(w, map[string]any{
				"points": []map[string]any{
					{"id": "p1", "payload": map[string]any{"text_hash": "aaa"}},
					{"id": "p2", "payload": map[string]any{}},
				},
				"next_page_offset": nil,
			})
		}))
		defer srv.Close()

		store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
		hashes, err := store.ExistingHashes(context.Background(), "pg-docs")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"aaa": true}, hashes)
	})
}

func TestUpsert(t *testing.T) {
	t.Parallel()

	makeChunks := func(n int) ([]*docdex.Chunk, [][]float32) {
		chunks := make([]*docdex.Chunk, n)
		vectors := make([][]float32, n)
		for i := range chunks {
			chunks[i] = &docdex.Chunk{
				ID:       fmt.Sprintf("id-%d", i),
				SourceID: "pg-docs",
				Text:     fmt.Sprintf("chunk %d", i),
			}
			vectors[i] = []float32{float32(i), 0.5}
		}
		return chunks, vectors
	}

	t.Run("writes points in batches", func(t *testing.T) {
		t.Parallel()

		var batchSizes []int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "/collections/docdex/points", r.URL.Path)
			body := decodeBody(t, r)
			batchSizes = append(batchSizes, len(body["points"].([]any)))
			writeResult(w, true)
		}))
		defer srv.Close()

		store := qdrant.NewStore(srv.URL, qdrant.WithUpsertBatchSize(2), qdrant.WithLogger(quietLogger()))
		chunks, vectors := makeChunks(5)

		n, err := store.Upsert(context.Background(), chunks, vectors)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, []int{2, 2, 1}, batchSizes)
	})

	t.Run("rejects misaligned chunks and vectors", func(t *testing.T) {
		t.Parallel()

		store := qdrant.NewStore("http://127.0.0.1:1", qdrant.WithLogger(quietLogger()))
		chunks, vectors := makeChunks(3)

		_, err := store.Upsert(context.Background(), chunks, vectors[:2])
		require.Error(t, err)
		assert.Equal(t, docdex.EINTERNAL, docdex.ErrorCode(err))
	})

	t.Run("points carry id vector and payload", func(t *testing.T) {
		t.Parallel()

		var point map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			point = body["points"].([]any)[0].(map[string]any)
			writeResult(w, true)
		}))
		defer srv.Close()

		store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
		chunks, vectors := makeChunks(1)

		_, err := store.Upsert(context.Background(), chunks, vectors)
		require.NoError(t, err)

		assert.Equal(t, "id-0", point["id"])
		assert.NotNil(t, point["vector"])
		payload := point["payload"].(map[string]any)
		assert.Equal(t, "chunk 0", payload["text"])
	})
}

func TestSearch(t *testing.T) {
	t.Parallel()

	var searchBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docdex/points/search", r.URL.Path)
		searchBody = decodeBody(t, r)
		writeResult(w, []map[string]any{
			{"id": "p1", "score": 0.91, "payload": map[string]any{"text": "first"}},
			{"id": 42, "score": 0.75, "payload": map[string]any{"text": "second"}},
		})
	}))
	defer srv.Close()

	store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
	matches, err := store.Search(context.Background(), []float32{0.1, 0.2}, 8)
	require.NoError(t, err)

	assert.Equal(t, float64(8), searchBody["limit"])
	assert.Equal(t, true, searchBody["with_payload"])

	require.Len(t, matches, 2)
	assert.Equal(t, "p1", matches[0].ID)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-6)
	assert.Equal(t, "42", matches[1].ID)
	assert.Equal(t, "second", matches[1].Payload["text"])
}

func TestCount(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docdex/points/count", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, true, body["exact"])
		writeResult(w, map[string]any{"count": 1234})
	}))
	defer srv.Close()

	store := qdrant.NewStore(srv.URL, qdrant.WithLogger(quietLogger()))
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1234, n)
}
