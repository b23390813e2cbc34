package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/qdrant"
)

// Dependencies holds all services and configuration for command
// execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config docdex.Config

	Sources  docdex.SourceLoader
	Adapter  docdex.SourceAdapter
	Parser   FileParser
	Embedder docdex.Embedder
	Store    docdex.VectorStore
	Asker    docdex.Asker

	// QdrantStore exposes export/import, which are store-specific.
	QdrantStore *qdrant.Store
}

// FileParser matches the parse registry's dispatch method.
type FileParser interface {
	ParseFile(path string, src *docdex.Source) []*docdex.Document
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Ingest IngestCmd `cmd:"" help:"Fetch, parse, chunk, embed and index configured sources"`
	Export ExportCmd `cmd:"" help:"Export the vector collection to a JSONL file"`
	Import ImportCmd `cmd:"" help:"Import a JSONL export into the vector collection"`
	Serve  ServeCmd  `cmd:"" help:"Serve the query API"`
	Ask    AskCmd    `cmd:"" help:"Ask a question over the indexed documentation"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Config   string   `short:"c" default:"config/sources.yaml" help:"Path to sources.yaml"`
	Domain   []string `short:"d" help:"Only sources in these domains (repeatable)"`
	Source   []string `short:"s" help:"Only these source ids (repeatable)"`
	DryRun   bool     `help:"Fetch, parse and chunk only; never touch the store"`
	Reindex  bool     `help:"Delete each source's stored points before upserting"`
	MaxItems int      `help:"Cap fetched files per source (0 = no cap)"`
	Workers  int      `short:"w" default:"1" help:"Parallel source workers"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Output string `short:"o" default:"export/docdex.jsonl" help:"Output JSONL path"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Input string `arg:"" help:"JSONL export file to import"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8000" help:"Listen address"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask"`
}
