package docdex

// Default configuration values. Sizes are in characters; the embedding
// model sees roughly one token per four characters.
const (
	DefaultChunkSize       = 4000
	DefaultChunkOverlap    = 600
	DefaultMinChunkLength  = 200
	DefaultEmbedBatchSize  = 64
	DefaultUpsertBatchSize = 100
	DefaultTopK            = 8
	DefaultCrawlMaxDepth   = 1
	DefaultCrawlRateLimit  = 2.0
	DefaultWorkers         = 1
)

// Config carries the pipeline tunables. It is built once at startup and
// threaded into component constructors; pipeline stages never mutate it.
type Config struct {
	// Chunking.
	ChunkSize      int
	ChunkOverlap   int
	MinChunkLength int

	// Remote batching.
	EmbedBatchSize  int
	UpsertBatchSize int

	// Retrieval.
	TopK int

	// Crawling defaults, used when a source does not override them.
	CrawlMaxDepth  int
	CrawlRateLimit float64

	// Source-level parallelism.
	Workers int
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		MinChunkLength:  DefaultMinChunkLength,
		EmbedBatchSize:  DefaultEmbedBatchSize,
		UpsertBatchSize: DefaultUpsertBatchSize,
		TopK:            DefaultTopK,
		CrawlMaxDepth:   DefaultCrawlMaxDepth,
		CrawlRateLimit:  DefaultCrawlRateLimit,
		Workers:         DefaultWorkers,
	}
}
