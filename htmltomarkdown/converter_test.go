package htmltomarkdown_test

import (
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings lists and code", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		markdown, err := c.Convert(`<h1>Vacuum</h1><p>Autovacuum keeps bloat down.</p><pre><code>VACUUM ANALYZE;</code></pre>`)
		require.NoError(t, err)

		assert.Contains(t, markdown, "# Vacuum")
		assert.Contains(t, markdown, "Autovacuum keeps bloat down.")
		assert.Contains(t, markdown, "VACUUM ANALYZE;")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		c := htmltomarkdown.NewConverter()
		_, err := c.Convert("   ")
		require.Error(t, err)
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})
}

func TestFilterShortBlocks(t *testing.T) {
	t.Parallel()

	t.Run("drops short paragraphs but keeps headings", func(t *testing.T) {
		t.Parallel()

		markdown := "# Title\n\nHome\n\nThis paragraph is long enough to be real documentation content.\n\nNext"

		got := htmltomarkdown.FilterShortBlocks(markdown, 30)

		assert.Contains(t, got, "# Title")
		assert.Contains(t, got, "real documentation content")
		assert.NotContains(t, got, "Home")
		assert.NotContains(t, got, "Next")
	})

	t.Run("drops empty blocks", func(t *testing.T) {
		t.Parallel()

		got := htmltomarkdown.FilterShortBlocks("\n\n   \n\n", 10)
		assert.Empty(t, got)
	})
}
