package config

import (
	"github.com/mvp-joe/semantic/internal/indexer"
)

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the root directory of the codebase to index.
func (c *Config) ToIndexerConfig(rootDir string) indexer.Config {
	return indexer.Config{
		RootDir:        rootDir,
		Include:        c.Paths.Include,
		Ignore:         c.Paths.Ignore,
		Languages:      c.EnabledLanguages(),
		Workers:        c.Extraction.Workers,
		MaxSourceBytes: c.Extraction.MaxSourceBytes,
		KeepSnapshots:  c.Storage.KeepSnapshots,
	}
}
