package parse_test

import (
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docsSource() *docdex.Source {
	return &docdex.Source{
		ID:       "pg-docs",
		Domain:   "postgres",
		Priority: 1,
		Kind:     docdex.SourceGit,
		Location: "https://github.com/postgres/docs.git",
	}
}

func TestParseMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("splits on ATX headings", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "vacuum-tuning.md", `# Vacuum Tuning

Autovacuum keeps table bloat under control on busy systems.

## Thresholds

The autovacuum_vacuum_threshold setting controls the trigger point.
`)

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.Equal(t, "Vacuum Tuning", docs[0].Section)
		assert.Contains(t, docs[0].Content, "table bloat")
		assert.Equal(t, "Thresholds", docs[1].Section)
		assert.Equal(t, "Vacuum Tuning", docs[0].Title)
	})

	t.Run("content before the first heading becomes a preamble", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "readme.md", `This paragraph introduces the document body.

# First Section

Section content that is long enough to keep around.
`)

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Empty(t, docs[0].Section)
		assert.Contains(t, docs[0].Content, "introduces the document")
	})

	t.Run("drops sections shorter than the minimum", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "short.md", `# Stub

tiny

# Real Section

This section carries enough text to survive the length filter.
`)

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Real Section", docs[0].Section)
	})

	t.Run("headingless file is a single document", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "notes.md", "Plain notes without any headings, long enough to keep.\n")

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Empty(t, docs[0].Section)
	})

	t.Run("empty file yields no documents", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "empty.md", "  \n\n")

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("derives title from the file name", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "replication_slot-basics.md", "A single body paragraph with enough length.\n")

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Replication Slot Basics", docs[0].Title)
	})

	t.Run("splits RST underline headings", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, "install.rst", `Installation
============

Install the agent with the platform package manager.

Configuration
-------------

Edit the agent configuration file before the first start.
`)

		docs, err := parse.ParseMarkdown(path, docsSource())
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Installation", docs[0].Section)
		assert.Equal(t, "Configuration", docs[1].Section)
		assert.Contains(t, docs[1].Content, "configuration file")
	})
}
