// Package pipeline orchestrates ingestion per source: fetch, parse,
// chunk, dedup or reindex, embed, upsert. Sources are independent units
// of work; any failure inside one source is recorded on the run result
// and never stops the others.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docdex/docdex"
	"golang.org/x/sync/errgroup"
)

// FileParser dispatches one fetched file to its parser. Parse failures
// are handled per file inside the parser layer.
type FileParser interface {
	ParseFile(path string, src *docdex.Source) []*docdex.Document
}

// Runner runs the ingest pipeline over a set of sources.
type Runner struct {
	Adapter  docdex.SourceAdapter
	Parser   FileParser
	Chunker  *docdex.Chunker
	Embedder docdex.Embedder
	Store    docdex.VectorStore
	Logger   *slog.Logger

	// DryRun stops after chunking and never touches the store.
	DryRun bool
	// Reindex deletes a source's stored points before upserting instead
	// of dedup-filtering against them.
	Reindex bool
	// MaxItems caps fetched files per source. Zero means no cap.
	MaxItems int
	// Workers bounds source-level parallelism.
	Workers int
}

// Run processes all sources and returns the merged run result. Sources
// run in parallel when more than one worker and more than one source
// are configured, otherwise strictly sequentially.
func (r *Runner) Run(ctx context.Context, sources []*docdex.Source) (*docdex.Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !r.DryRun {
		dim, err := r.Embedder.Dimensions(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.Store.EnsureCollection(ctx, dim); err != nil {
			return nil, err
		}
	}

	if r.Workers > 1 && len(sources) > 1 {
		return r.runParallel(ctx, sources, logger), nil
	}
	return r.runSequential(ctx, sources, logger), nil
}

func (r *Runner) runSequential(ctx context.Context, sources []*docdex.Source, logger *slog.Logger) *docdex.Result {
	result := &docdex.Result{}
	for _, src := range sources {
		r.runOne(ctx, src, result, logger)
	}
	return result
}

// runParallel distributes sources over a bounded worker pool. Each
// worker accumulates into a private result; merging into the run result
// under the mutex is the only synchronization between workers.
func (r *Runner) runParallel(ctx context.Context, sources []*docdex.Source, logger *slog.Logger) *docdex.Result {
	result := &docdex.Result{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for _, src := range sources {
		g.Go(func() error {
			sub := &docdex.Result{}
			r.runOne(ctx, src, sub, logger)

			mu.Lock()
			result.Merge(sub)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; per-source failures live in the
	// result's error list.
	_ = g.Wait()
	return result
}

// runOne processes a single source, trapping its failure as a labeled
// error string.
func (r *Runner) runOne(ctx context.Context, src *docdex.Source, result *docdex.Result, logger *slog.Logger) {
	logger.Info("processing source", "source_id", src.ID, "domain", src.Domain, "source_type", src.Kind)

	if err := r.processSource(ctx, src, result, logger); err != nil {
		logger.Error("source failed", "source_id", src.ID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("[%s] %v", src.ID, err))
	}
	result.SourcesProcessed++
}

func (r *Runner) processSource(ctx context.Context, src *docdex.Source, result *docdex.Result, logger *slog.Logger) error {
	// Fetch.
	files, err := r.Adapter.FetchSource(ctx, src, r.MaxItems)
	if err != nil {
		return err
	}
	result.FilesFetched += len(files)
	logger.Info("fetched", "source_id", src.ID, "files", len(files))

	// Parse.
	var docs []*docdex.Document
	for _, file := range files {
		docs = append(docs, r.Parser.ParseFile(file, src)...)
	}
	result.DocumentsParsed += len(docs)
	logger.Info("parsed", "source_id", src.ID, "documents", len(docs))

	if len(docs) == 0 {
		logger.Warn("no documents", "source_id", src.ID)
		return nil
	}

	// Chunk.
	chunks := r.Chunker.Chunk(docs)
	result.ChunksCreated += len(chunks)
	logger.Info("chunked", "source_id", src.ID, "chunks", len(chunks))

	if r.DryRun {
		logger.Info("dry run, skipping store", "source_id", src.ID, "chunks", len(chunks))
		return nil
	}

	// Reindex deletes prior points; incremental mode filters chunks
	// whose normalized text already exists for this source.
	if r.Reindex {
		if err := r.Store.DeleteBySource(ctx, src.ID); err != nil {
			return err
		}
	} else {
		existing, err := r.Store.ExistingHashes(ctx, src.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			kept := chunks[:0]
			for _, c := range chunks {
				if existing[c.TextHash] {
					continue
				}
				kept = append(kept, c)
			}
			if deduped := len(chunks) - len(kept); deduped > 0 {
				result.ChunksDeduped += deduped
				logger.Info("dedup skipped chunks", "source_id", src.ID, "skipped", deduped)
			}
			chunks = kept
		}
	}

	if len(chunks) == 0 {
		logger.Info("no new chunks", "source_id", src.ID)
		return nil
	}

	// Embed. Individually failed texts are excluded via a stable filter
	// so chunks and vectors stay aligned.
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, failed, err := r.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		logger.Warn("chunks skipped by embedder", "source_id", src.ID, "skipped", len(failed))
		kept := make([]*docdex.Chunk, 0, len(chunks)-len(failed))
		for i, c := range chunks {
			if failed[i] {
				continue
			}
			kept = append(kept, c)
		}
		chunks = kept
	}
	result.ChunksEmbedded += len(vectors)
	logger.Info("embedded", "source_id", src.ID, "vectors", len(vectors))

	// Upsert.
	upserted, err := r.Store.Upsert(ctx, chunks, vectors)
	result.ChunksUpserted += upserted
	if err != nil {
		return err
	}
	logger.Info("upserted", "source_id", src.ID, "points", upserted)
	return nil
}
