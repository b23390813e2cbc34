package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/docdex/docdex"
	"github.com/docdex/docdex/fetch"
	"github.com/docdex/docdex/goquery"
	"github.com/docdex/docdex/htmltomarkdown"
	dochttp "github.com/docdex/docdex/http"
	"github.com/docdex/docdex/ollama"
	"github.com/docdex/docdex/parse"
	"github.com/docdex/docdex/qdrant"
	docslog "github.com/docdex/docdex/slog"
	"github.com/docdex/docdex/trafilatura"
	docyaml "github.com/docdex/docdex/yaml"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// Optional; environment variables win over .env values.
	_ = godotenv.Load()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Default service endpoints and models, overridable via environment.
const (
	defaultOllamaURL  = "http://localhost:11434"
	defaultQdrantURL  = "http://localhost:6333"
	defaultEmbedModel = "nomic-embed-text"
	defaultLLMModel   = "deepseek-r1:8b"
	defaultCollection = "docdex_docs"
	defaultUserAgent  = "docdex"
)

// Main represents the program.
type Main struct {
	OllamaURL  string
	QdrantURL  string
	EmbedModel string
	LLMModel   string
	Collection string
	Workdir    string
}

// NewMain returns a new instance of Main configured from the
// environment with defaults.
func NewMain() *Main {
	return &Main{
		OllamaURL:  envOr("DOCDEX_OLLAMA_URL", defaultOllamaURL),
		QdrantURL:  envOr("DOCDEX_QDRANT_URL", defaultQdrantURL),
		EmbedModel: envOr("DOCDEX_EMBED_MODEL", defaultEmbedModel),
		LLMModel:   envOr("DOCDEX_LLM_MODEL", defaultLLMModel),
		Collection: envOr("DOCDEX_COLLECTION", defaultCollection),
		Workdir:    envOr("DOCDEX_WORKDIR", defaultWorkdir()),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Config: docdex.DefaultConfig(),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docdex"),
		kong.Description("Documentation ingestion and offline question answering."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docdex --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Wire services.
	embedder := ollama.NewEmbedder(m.OllamaURL, m.EmbedModel, ollama.WithEmbedLogger(logger))
	store := qdrant.NewStore(m.QdrantURL,
		qdrant.WithCollection(m.Collection),
		qdrant.WithLogger(logger),
	)
	deps.Embedder = docslog.NewLoggingEmbedder(embedder, logger)
	deps.Store = docslog.NewLoggingVectorStore(store, logger)
	deps.QdrantStore = store

	fetcher := docslog.NewLoggingFetcher(
		dochttp.NewFetcher(dochttp.WithUserAgent(defaultUserAgent)), logger)
	deps.Adapter = &fetch.Dispatcher{
		Git:   &fetch.GitAdapter{Workdir: m.Workdir, Logger: logger},
		Web:   &fetch.WebAdapter{Fetcher: fetcher, Workdir: m.Workdir, UserAgent: defaultUserAgent, Logger: logger},
		Local: &fetch.LocalAdapter{},
		JSONL: &fetch.JSONLAdapter{},
	}

	deps.Parser = parse.NewRegistry(
		trafilatura.NewExtractor(),
		goquery.NewExtractor(),
		htmltomarkdown.NewConverter(),
		logger,
	)

	deps.Sources = &docyaml.Loader{Logger: logger}
	deps.Asker = ollama.NewAsker(m.OllamaURL, m.LLMModel, deps.Embedder, deps.Store,
		ollama.WithTopK(deps.Config.TopK),
		ollama.WithAskerLogger(logger),
	)

	return kongCtx.Run(deps)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultWorkdir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "workdir"
	}
	dir := filepath.Join(home, ".docdex", "workdir")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
