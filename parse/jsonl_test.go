package parse_test

import (
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qaSource() *docdex.Source {
	return &docdex.Source{
		ID:       "dba-qa",
		Domain:   "postgres",
		Priority: 4,
		Kind:     docdex.SourceJSONL,
		Location: "/data/qa.jsonl",
	}
}

func TestParseJSONL(t *testing.T) {
	t.Parallel()

	t.Run("turns records into question and answer documents", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "qa.jsonl", `{"instruction": "How do I find blocking locks?", "output": "Query pg_locks joined with pg_stat_activity.", "resource": "PostgreSQL", "category": "locking"}
{"instruction": "How do I check replication lag?", "output": "Use pg_stat_replication on the primary.", "resource": "PostgreSQL", "category": "replication"}
`)

		docs, err := parse.ParseJSONL(path, qaSource())
		require.NoError(t, err)
		require.Len(t, docs, 2)

		doc := docs[0]
		assert.Contains(t, doc.Content, "Question: How do I find blocking locks?")
		assert.Contains(t, doc.Content, "Answer: Query pg_locks")
		assert.Equal(t, "PostgreSQL", doc.Title)
		assert.Equal(t, "locking", doc.Section)
		assert.Contains(t, doc.Tags, "locking")
		assert.Equal(t, "postgresql", doc.Component)
		assert.Contains(t, doc.URI, "#0")
		assert.Contains(t, docs[1].URI, "#1")
	})

	t.Run("skips malformed and blank lines", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "dirty.jsonl", `{"instruction": "q1", "output": "a1"}
not json at all

{"instruction": "q2", "output": "a2"}
`)

		docs, err := parse.ParseJSONL(path, qaSource())
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("falls back to file stem when resource is missing", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "mongo_ops.jsonl", `{"instruction": "q", "output": "a"}
`)

		docs, err := parse.ParseJSONL(path, qaSource())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "mongo_ops", docs[0].Title)
		assert.Empty(t, docs[0].Tags)
	})

	t.Run("source component wins over resource", func(t *testing.T) {
		t.Parallel()

		src := qaSource()
		src.Component = "server"
		path := writeTestFile(t, "qa.jsonl", `{"instruction": "q", "output": "a", "resource": "MySQL"}
`)

		docs, err := parse.ParseJSONL(path, src)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "server", docs[0].Component)
	})
}
