package docdex

import (
	"fmt"
	"strings"
)

// Result summarizes a pipeline run. Workers accumulate into private
// Results and merge them into the run-level Result as they complete;
// Merge is associative and commutative over the counters and append-only
// over the error list, so any partition of sources across workers yields
// the same totals.
type Result struct {
	SourcesProcessed int
	FilesFetched     int
	DocumentsParsed  int
	ChunksCreated    int
	ChunksEmbedded   int
	ChunksUpserted   int
	ChunksDeduped    int
	Errors           []string
}

// Merge folds other into r.
func (r *Result) Merge(other *Result) {
	r.SourcesProcessed += other.SourcesProcessed
	r.FilesFetched += other.FilesFetched
	r.DocumentsParsed += other.DocumentsParsed
	r.ChunksCreated += other.ChunksCreated
	r.ChunksEmbedded += other.ChunksEmbedded
	r.ChunksUpserted += other.ChunksUpserted
	r.ChunksDeduped += other.ChunksDeduped
	r.Errors = append(r.Errors, other.Errors...)
}

// Summary renders the run report. At most the first ten errors are
// listed.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sources processed: %d\n", r.SourcesProcessed)
	fmt.Fprintf(&b, "Files fetched:     %d\n", r.FilesFetched)
	fmt.Fprintf(&b, "Documents parsed:  %d\n", r.DocumentsParsed)
	fmt.Fprintf(&b, "Chunks created:    %d\n", r.ChunksCreated)
	fmt.Fprintf(&b, "Chunks embedded:   %d\n", r.ChunksEmbedded)
	fmt.Fprintf(&b, "Chunks upserted:   %d\n", r.ChunksUpserted)
	fmt.Fprintf(&b, "Chunks deduped:    %d", r.ChunksDeduped)
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors:            %d", len(r.Errors))
		for i, err := range r.Errors {
			if i == 10 {
				break
			}
			fmt.Fprintf(&b, "\n  - %s", err)
		}
	}
	return b.String()
}
