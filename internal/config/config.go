package config

import (
	"github.com/mvp-joe/semantic/internal/logging"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Config represents the complete semantic configuration.
// It can be loaded from .semantic/config.yml with environment variable overrides.
type Config struct {
	Languages  []string         `yaml:"languages" mapstructure:"languages"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Logging    logging.Config   `yaml:"logging" mapstructure:"logging"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// ExtractionConfig bounds the extraction engine.
type ExtractionConfig struct {
	MaxSourceBytes int `yaml:"max_source_bytes" mapstructure:"max_source_bytes"`
	Workers        int `yaml:"workers" mapstructure:"workers"` // 0 means one per CPU
}

// CacheConfig sizes the in-process table cache. Size 0 disables it.
type CacheConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// StorageConfig controls the snapshot store.
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	Path          string `yaml:"path" mapstructure:"path"` // relative paths resolve against the project root
	KeepSnapshots int    `yaml:"keep_snapshots" mapstructure:"keep_snapshots"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	langs := syntax.DefaultRegistry().Languages()
	tags := make([]string, 0, len(langs))
	for _, l := range langs {
		tags = append(tags, l.String())
	}

	return &Config{
		Languages: tags,
		Paths: PathsConfig{
			Include: []string{
				"**/*.rs",
				"**/*.go",
				"**/*.py",
				"**/*.ts",
				"**/*.tsx",
				"**/*.java",
				"**/*.c",
				"**/*.h",
				"**/*.rb",
				"**/*.php",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				".semantic/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"testdata/**",
			},
		},
		Extraction: ExtractionConfig{
			MaxSourceBytes: 4 << 20,
			Workers:        0,
		},
		Cache: CacheConfig{
			Size: 1024,
		},
		Storage: StorageConfig{
			Enabled:       false,
			Path:          ".semantic/snapshots.db",
			KeepSnapshots: 10,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// EnabledLanguages resolves the configured language tags. Unknown tags are skipped;
// Validate reports them.
func (c *Config) EnabledLanguages() []syntax.Language {
	seen := make(map[syntax.Language]bool, len(c.Languages))
	var out []syntax.Language
	for _, tag := range c.Languages {
		lang, ok := syntax.LanguageFromTag(tag)
		if !ok || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}
