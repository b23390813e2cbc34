package docdex_test

import (
	"testing"

	"github.com/docdex/docdex"
	"github.com/stretchr/testify/assert"
)

func validSource() *docdex.Source {
	return &docdex.Source{
		ID:       "pg-docs",
		Domain:   "postgres",
		Priority: 1,
		Kind:     docdex.SourceGit,
		Location: "https://github.com/postgres/postgres.git",
	}
}

func TestSourceValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete source", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validSource().Validate())
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		t.Parallel()

		for name, mutate := range map[string]func(*docdex.Source){
			"id":       func(s *docdex.Source) { s.ID = "" },
			"domain":   func(s *docdex.Source) { s.Domain = "" },
			"priority": func(s *docdex.Source) { s.Priority = 0 },
			"location": func(s *docdex.Source) { s.Location = "" },
		} {
			src := validSource()
			mutate(src)
			err := src.Validate()
			assert.Error(t, err, "field %s", name)
			assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
		}
	})

	t.Run("rejects invalid source kind", func(t *testing.T) {
		t.Parallel()

		src := validSource()
		src.Kind = "ftp"

		err := src.Validate()
		assert.Error(t, err)
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})
}

func TestFilterSources(t *testing.T) {
	t.Parallel()

	sources := []*docdex.Source{
		{ID: "a", Domain: "postgres"},
		{ID: "b", Domain: "postgres"},
		{ID: "c", Domain: "mysql"},
	}

	t.Run("empty filters match everything", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, docdex.FilterSources(sources, nil, nil), 3)
	})

	t.Run("filters by domain", func(t *testing.T) {
		t.Parallel()

		got := docdex.FilterSources(sources, []string{"postgres"}, nil)
		assert.Len(t, got, 2)
	})

	t.Run("filters by id", func(t *testing.T) {
		t.Parallel()

		got := docdex.FilterSources(sources, nil, []string{"c"})
		assert.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("combines both filters", func(t *testing.T) {
		t.Parallel()

		got := docdex.FilterSources(sources, []string{"postgres"}, []string{"b", "c"})
		assert.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})
}
