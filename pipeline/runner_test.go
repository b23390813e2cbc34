package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/mock"
	"github.com/docdex/docdex/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubParser emits one document per file with the file path as content.
type stubParser struct {
	fn func(path string, src *docdex.Source) []*docdex.Document
}

func (p *stubParser) ParseFile(path string, src *docdex.Source) []*docdex.Document {
	return p.fn(path, src)
}

func oneDocPerFile(path string, src *docdex.Source) []*docdex.Document {
	doc := docdex.FromSource(src)
	doc.URI = path
	doc.Title = path
	doc.Content = "content of " + path
	return []*docdex.Document{&doc}
}

func testSource(id string) *docdex.Source {
	return &docdex.Source{
		ID:       id,
		Domain:   "postgres",
		Priority: 1,
		Kind:     docdex.SourceLocal,
		Location: "/srv/" + id,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// happyStore accepts everything and reports no existing hashes.
func happyStore(upserts *int) *mock.VectorStore {
	return &mock.VectorStore{
		EnsureCollectionFn: func(context.Context, int) error { return nil },
		DeleteBySourceFn:   func(context.Context, string) error { return nil },
		ExistingHashesFn: func(context.Context, string) (map[string]bool, error) {
			return map[string]bool{}, nil
		},
		UpsertFn: func(_ context.Context, chunks []*docdex.Chunk, vectors [][]float32) (int, error) {
			if upserts != nil {
				*upserts += len(chunks)
			}
			return len(chunks), nil
		},
	}
}

func happyEmbedder() *mock.Embedder {
	return &mock.Embedder{
		DimensionsFn: func(context.Context) (int, error) { return 3, nil },
		EmbedDocumentsFn: func(_ context.Context, texts []string) ([][]float32, map[int]bool, error) {
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{0.1, 0.2, 0.3}
			}
			return vectors, nil, nil
		},
	}
}

func fixedAdapter(files ...string) *mock.SourceAdapter {
	return &mock.SourceAdapter{
		FetchSourceFn: func(context.Context, *docdex.Source, int) ([]string, error) {
			return files, nil
		},
	}
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	chunker := &docdex.Chunker{Size: 4000, Overlap: 0, MinLength: 1}

	t.Run("full flow counts every stage", func(t *testing.T) {
		t.Parallel()

		var upserts int
		r := &pipeline.Runner{
			Adapter:  fixedAdapter("a.md", "b.md"),
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: happyEmbedder(),
			Store:    happyStore(&upserts),
			Logger:   quietLogger(),
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		require.NoError(t, err)

		assert.Equal(t, 1, result.SourcesProcessed)
		assert.Equal(t, 2, result.FilesFetched)
		assert.Equal(t, 2, result.DocumentsParsed)
		assert.Equal(t, 2, result.ChunksCreated)
		assert.Equal(t, 2, result.ChunksEmbedded)
		assert.Equal(t, 2, result.ChunksUpserted)
		assert.Empty(t, result.Errors)
		assert.Equal(t, 2, upserts)
	})

	t.Run("dry run never touches the store or embedder", func(t *testing.T) {
		t.Parallel()

		r := &pipeline.Runner{
			Adapter: fixedAdapter("a.md"),
			Parser:  &stubParser{fn: oneDocPerFile},
			Chunker: chunker,
			// nil function fields would panic if called.
			Embedder: &mock.Embedder{},
			Store:    &mock.VectorStore{},
			Logger:   quietLogger(),
			DryRun:   true,
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		require.NoError(t, err)

		assert.Equal(t, 1, result.ChunksCreated)
		assert.Zero(t, result.ChunksEmbedded)
		assert.Zero(t, result.ChunksUpserted)
	})

	t.Run("reindex deletes stored points instead of dedup filtering", func(t *testing.T) {
		t.Parallel()

		var deleted []string
		store := happyStore(nil)
		store.DeleteBySourceFn = func(_ context.Context, sourceID string) error {
			deleted = append(deleted, sourceID)
			return nil
		}
		store.ExistingHashesFn = func(context.Context, string) (map[string]bool, error) {
			t.Error("ExistingHashes must not be called in reindex mode")
			return nil, nil
		}

		r := &pipeline.Runner{
			Adapter:  fixedAdapter("a.md"),
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: happyEmbedder(),
			Store:    store,
			Logger:   quietLogger(),
			Reindex:  true,
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		require.NoError(t, err)
		assert.Equal(t, []string{"pg-docs"}, deleted)
		assert.Zero(t, result.ChunksDeduped)
	})

	t.Run("incremental mode skips chunks with known hashes", func(t *testing.T) {
		t.Parallel()

		var embedded []string
		store := happyStore(nil)
		store.ExistingHashesFn = func(context.Context, string) (map[string]bool, error) {
			return map[string]bool{docdex.TextHash("content of a.md"): true}, nil
		}
		embedder := happyEmbedder()
		inner := embedder.EmbedDocumentsFn
		embedder.EmbedDocumentsFn = func(ctx context.Context, texts []string) ([][]float32, map[int]bool, error) {
			embedded = append(embedded, texts...)
			return inner(ctx, texts)
		}

		r := &pipeline.Runner{
			Adapter:  fixedAdapter("a.md", "b.md"),
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: embedder,
			Store:    store,
			Logger:   quietLogger(),
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		require.NoError(t, err)

		assert.Equal(t, 1, result.ChunksDeduped)
		assert.Equal(t, 1, result.ChunksEmbedded)
		require.Len(t, embedded, 1)
		assert.Equal(t, "content of b.md", embedded[0])
	})

	t.Run("embedder failures exclude chunks but keep alignment", func(t *testing.T) {
		t.Parallel()

		var upsertedChunks []*docdex.Chunk
		var upsertedVectors [][]float32
		store := happyStore(nil)
		store.UpsertFn = func(_ context.Context, chunks []*docdex.Chunk, vectors [][]float32) (int, error) {
			upsertedChunks = chunks
			upsertedVectors = vectors
			return len(chunks), nil
		}

		embedder := happyEmbedder()
		embedder.EmbedDocumentsFn = func(_ context.Context, texts []string) ([][]float32, map[int]bool, error) {
			// The first text is abandoned; vectors cover the rest.
			vectors := make([][]float32, 0, len(texts)-1)
			for range texts[1:] {
				vectors = append(vectors, []float32{0.1})
			}
			return vectors, map[int]bool{0: true}, nil
		}

		r := &pipeline.Runner{
			Adapter:  fixedAdapter("a.md", "b.md", "c.md"),
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: embedder,
			Store:    store,
			Logger:   quietLogger(),
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		require.NoError(t, err)

		require.Len(t, upsertedChunks, 2)
		require.Len(t, upsertedVectors, 2)
		assert.Equal(t, "content of b.md", upsertedChunks[0].Text)
		assert.Equal(t, 2, result.ChunksUpserted)
	})

	t.Run("a failing source never stops the others", func(t *testing.T) {
		t.Parallel()

		adapter := &mock.SourceAdapter{
			FetchSourceFn: func(_ context.Context, src *docdex.Source, _ int) ([]string, error) {
				if src.ID == "bad" {
					return nil, errors.New("clone failed")
				}
				return []string{"a.md"}, nil
			},
		}

		r := &pipeline.Runner{
			Adapter:  adapter,
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: happyEmbedder(),
			Store:    happyStore(nil),
			Logger:   quietLogger(),
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("bad"), testSource("good")})
		require.NoError(t, err)

		assert.Equal(t, 2, result.SourcesProcessed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "[bad]")
		assert.Contains(t, result.Errors[0], "clone failed")
		assert.Equal(t, 1, result.ChunksUpserted)
	})

	t.Run("a source with no documents is a no-op", func(t *testing.T) {
		t.Parallel()

		r := &pipeline.Runner{
			Adapter:  fixedAdapter("unparseable.bin"),
			Parser:   &stubParser{fn: func(string, *docdex.Source) []*docdex.Document { return nil }},
			Chunker:  chunker,
			Embedder: happyEmbedder(),
			Store:    happyStore(nil),
			Logger:   quietLogger(),
		}

		result, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		require.NoError(t, err)

		assert.Equal(t, 1, result.FilesFetched)
		assert.Zero(t, result.DocumentsParsed)
		assert.Empty(t, result.Errors)
	})

	t.Run("a collection setup failure aborts the run", func(t *testing.T) {
		t.Parallel()

		store := happyStore(nil)
		store.EnsureCollectionFn = func(context.Context, int) error {
			return errors.New("store down")
		}

		r := &pipeline.Runner{
			Adapter:  fixedAdapter("a.md"),
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: happyEmbedder(),
			Store:    store,
			Logger:   quietLogger(),
		}

		_, err := r.Run(context.Background(), []*docdex.Source{testSource("pg-docs")})
		assert.Error(t, err)
	})

	t.Run("parallel workers merge into one result", func(t *testing.T) {
		t.Parallel()

		sources := make([]*docdex.Source, 4)
		for i := range sources {
			sources[i] = testSource(fmt.Sprintf("src-%d", i))
		}

		adapter := &mock.SourceAdapter{
			FetchSourceFn: func(_ context.Context, src *docdex.Source, _ int) ([]string, error) {
				if src.ID == "src-2" {
					return nil, errors.New("boom")
				}
				return []string{src.ID + "/doc.md"}, nil
			},
		}

		r := &pipeline.Runner{
			Adapter:  adapter,
			Parser:   &stubParser{fn: oneDocPerFile},
			Chunker:  chunker,
			Embedder: happyEmbedder(),
			Store:    happyStore(nil),
			Logger:   quietLogger(),
			Workers:  2,
		}

		result, err := r.Run(context.Background(), sources)
		require.NoError(t, err)

		assert.Equal(t, 4, result.SourcesProcessed)
		assert.Equal(t, 3, result.FilesFetched)
		assert.Equal(t, 3, result.ChunksUpserted)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "[src-2]")
	})
}
