package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/semantic/internal/logging"
	"github.com/mvp-joe/semantic/internal/syntax"
)

var (
	// ErrUnknownLanguage indicates a language tag with no adapter
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrNoLanguages indicates every language was disabled
	ErrNoLanguages = errors.New("no languages enabled")

	// ErrInvalidPattern indicates a glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrNoIncludePatterns indicates an include list that would discover nothing
	ErrNoIncludePatterns = errors.New("no include patterns")

	// ErrInvalidExtraction indicates negative extraction limits
	ErrInvalidExtraction = errors.New("invalid extraction settings")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidStorage indicates invalid snapshot store configuration
	ErrInvalidStorage = errors.New("invalid storage settings")

	// ErrInvalidLogging indicates an unknown log level or format
	ErrInvalidLogging = errors.New("invalid logging settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	for _, check := range []func(*Config) error{
		validateLanguages,
		validatePaths,
		validateExtraction,
		validateCache,
		validateStorage,
		validateLogging,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	return joinErrors(errs)
}

func validateLanguages(cfg *Config) error {
	var errs []error

	if len(cfg.Languages) == 0 {
		errs = append(errs, fmt.Errorf("%w: languages must list at least one tag", ErrNoLanguages))
	}
	for _, tag := range cfg.Languages {
		if _, ok := syntax.LanguageFromTag(tag); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLanguage, tag))
		}
	}

	return joinErrors(errs)
}

func validatePaths(cfg *Config) error {
	var errs []error

	if len(cfg.Paths.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: paths.include must list at least one pattern", ErrNoIncludePatterns))
	}
	for _, group := range [][]string{cfg.Paths.Include, cfg.Paths.Ignore} {
		for _, p := range group {
			if _, err := glob.Compile(p, '/'); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
			}
		}
	}

	return joinErrors(errs)
}

func validateExtraction(cfg *Config) error {
	var errs []error

	// 0 disables the size limit
	if cfg.Extraction.MaxSourceBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: max_source_bytes cannot be negative, got %d", ErrInvalidExtraction, cfg.Extraction.MaxSourceBytes))
	}
	if cfg.Extraction.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidExtraction, cfg.Extraction.Workers))
	}

	return joinErrors(errs)
}

func validateCache(cfg *Config) error {
	if cfg.Cache.Size < 0 {
		return fmt.Errorf("%w: size cannot be negative, got %d", ErrInvalidCacheSettings, cfg.Cache.Size)
	}
	return nil
}

func validateStorage(cfg *Config) error {
	var errs []error

	if cfg.Storage.Enabled && strings.TrimSpace(cfg.Storage.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: path is required when storage is enabled", ErrInvalidStorage))
	}
	// 0 keeps every snapshot
	if cfg.Storage.KeepSnapshots < 0 {
		errs = append(errs, fmt.Errorf("%w: keep_snapshots cannot be negative, got %d", ErrInvalidStorage, cfg.Storage.KeepSnapshots))
	}

	return joinErrors(errs)
}

func validateLogging(cfg *Config) error {
	var errs []error

	if cfg.Logging.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("%w: level %q", ErrInvalidLogging, cfg.Logging.Level))
		}
	}
	switch cfg.Logging.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: format must be %q or %q, got %q", ErrInvalidLogging, logging.FormatText, logging.FormatJSON, cfg.Logging.Format))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Sentinels stay reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - "), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() []error { return e.errs }
