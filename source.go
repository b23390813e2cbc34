package docdex

// SourceKind identifies the fetch strategy for a source.
type SourceKind string

// Supported source kinds.
const (
	SourceGit   SourceKind = "git"
	SourceWeb   SourceKind = "web"
	SourceLocal SourceKind = "local"
	SourceJSONL SourceKind = "jsonl"
)

// ValidSourceKind reports whether k is one of the supported kinds.
func ValidSourceKind(k SourceKind) bool {
	switch k {
	case SourceGit, SourceWeb, SourceLocal, SourceJSONL:
		return true
	}
	return false
}

// Source is a single source definition from sources.yaml. It is
// immutable per run: pipeline stages never mutate it, with the single
// exception that the git adapter back-fills Version from Branch when
// Version is absent.
type Source struct {
	ID       string     `yaml:"id"`
	Domain   string     `yaml:"domain"`
	Priority int        `yaml:"priority"` // 1 = highest
	Kind     SourceKind `yaml:"source_type"`
	Location string     `yaml:"location"`

	Branch       string   `yaml:"branch"`
	IncludeGlobs []string `yaml:"include_globs"`
	ExcludeGlobs []string `yaml:"exclude_globs"`
	ParserHint   string   `yaml:"parser_hint"`
	Tags         []string `yaml:"tags"`
	Component    string   `yaml:"component"`
	Version      string   `yaml:"version"`
	License      string   `yaml:"license"`
	Engine       string   `yaml:"engine"`
	Topic        string   `yaml:"topic"`

	// Web crawling tunables. CrawlDepth 0 means fetch the location page
	// only; values above 0 enable breadth-first link expansion.
	CrawlDepth int     `yaml:"crawl_depth"`
	RateLimit  float64 `yaml:"rate_limit"`
}

// Validate returns an error if the source is missing required fields or
// names an unsupported kind.
func (s *Source) Validate() error {
	if s.ID == "" {
		return Errorf(EINVALID, "source id required")
	}
	if s.Domain == "" {
		return Errorf(EINVALID, "source %q: domain required", s.ID)
	}
	if s.Priority < 1 {
		return Errorf(EINVALID, "source %q: priority must be >= 1", s.ID)
	}
	if !ValidSourceKind(s.Kind) {
		return Errorf(EINVALID, "source %q: invalid source_type %q (valid: git, web, local, jsonl)", s.ID, s.Kind)
	}
	if s.Location == "" {
		return Errorf(EINVALID, "source %q: location required", s.ID)
	}
	return nil
}

// FilterSources returns the sources matching the given domain and id
// filters. Empty filters match everything.
func FilterSources(sources []*Source, domains, ids []string) []*Source {
	filtered := sources
	if len(domains) > 0 {
		var keep []*Source
		for _, s := range filtered {
			for _, d := range domains {
				if s.Domain == d {
					keep = append(keep, s)
					break
				}
			}
		}
		filtered = keep
	}
	if len(ids) > 0 {
		var keep []*Source
		for _, s := range filtered {
			for _, id := range ids {
				if s.ID == id {
					keep = append(keep, s)
					break
				}
			}
		}
		filtered = keep
	}
	return filtered
}

// SourceLoader loads source definitions from a config file.
// Loading fails before any fetch begins when a source is missing a
// required field or names an invalid kind.
type SourceLoader interface {
	LoadSources(path string) ([]*Source, error)
}
