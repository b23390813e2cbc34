package main

import (
	"fmt"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/pipeline"
)

// Run executes the ingest command. It exits non-zero when no source
// matches the filters or when any source reported an error; partial
// success still commits the successful sources.
func (c *IngestCmd) Run(deps *Dependencies) error {
	sources, err := deps.Sources.LoadSources(c.Config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	sources = docdex.FilterSources(sources, c.Domain, c.Source)
	if len(sources) == 0 {
		return docdex.Errorf(docdex.ENOTFOUND, "no sources matched the given filters")
	}

	runner := &pipeline.Runner{
		Adapter:  deps.Adapter,
		Parser:   deps.Parser,
		Chunker:  docdex.NewChunker(deps.Config),
		Embedder: deps.Embedder,
		Store:    deps.Store,
		Logger:   deps.Logger,
		DryRun:   c.DryRun,
		Reindex:  c.Reindex,
		MaxItems: c.MaxItems,
		Workers:  c.Workers,
	}

	result, err := runner.Run(deps.Ctx, sources)
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, result.Summary())

	if len(result.Errors) > 0 {
		return docdex.Errorf(docdex.EINTERNAL, "%d source(s) failed", len(result.Errors))
	}
	return nil
}
