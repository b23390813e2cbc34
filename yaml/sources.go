// Package yaml loads source definitions from sources.yaml.
package yaml

import (
	"log/slog"
	"os"

	"github.com/docdex/docdex"
	"gopkg.in/yaml.v3"
)

// Ensure Loader implements docdex.SourceLoader at compile time.
var _ docdex.SourceLoader = (*Loader)(nil)

// Loader reads and validates the declarative source list. Validation
// failures abort loading before any fetch begins.
type Loader struct {
	Logger *slog.Logger
}

type sourcesFile struct {
	Sources []*docdex.Source `yaml:"sources"`
}

// LoadSources parses the YAML file at path and validates every source.
func (l *Loader) LoadSources(path string) ([]*docdex.Source, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, docdex.Errorf(docdex.ENOTFOUND, "config file not found: %s", path)
		}
		return nil, err
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "malformed config file %s: %v", path, err)
	}
	if len(file.Sources) == 0 {
		return nil, docdex.Errorf(docdex.EINVALID, "config file must contain a sources list: %s", path)
	}

	for _, src := range file.Sources {
		if src.Branch == "" {
			src.Branch = "main"
		}
		if src.ParserHint == "" {
			src.ParserHint = "auto"
		}
		if err := src.Validate(); err != nil {
			return nil, err
		}
		logger.Debug("loaded source", "source_id", src.ID, "source_type", src.Kind)
	}

	logger.Info("sources loaded", "count", len(file.Sources))
	return file.Sources, nil
}
