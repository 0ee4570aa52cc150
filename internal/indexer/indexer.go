package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/semantic/internal/engine"
	"github.com/mvp-joe/semantic/internal/logging"
	"github.com/mvp-joe/semantic/internal/search"
	"github.com/mvp-joe/semantic/internal/storage"
	"github.com/mvp-joe/semantic/internal/symtab"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Config holds the settings of one indexing run.
type Config struct {
	RootDir        string
	Include        []string
	Ignore         []string
	Languages      []syntax.Language // empty means all
	Workers        int
	MaxSourceBytes int
	KeepSnapshots  int // snapshots kept per file after saving; 0 keeps all
}

// FileResult is the outcome for one discovered file. Exactly one of Table and Err
// is set.
type FileResult struct {
	File  SourceFile
	Table *symtab.Table
	Err   error
	Hash  string
	// Cached is set when the table came from the cache instead of the engine.
	Cached bool
	// Delta against the previous snapshot; nil when no store is attached.
	Delta *symtab.Delta
	// SnapshotID is set when a new snapshot was written.
	SnapshotID string
}

// Stats summarizes a run.
type Stats struct {
	Files       int           `json:"files"`
	Extracted   int           `json:"extracted"`
	Cached      int           `json:"cached"`
	Failed      int           `json:"failed"`
	Entities    int           `json:"entities"`
	Edges       int           `json:"edges"`
	Diagnostics int           `json:"diagnostics"`
	Saved       int           `json:"saved"`
	Duration    time.Duration `json:"duration"`
}

// Report is the result of Index.
type Report struct {
	Files []FileResult
	Stats Stats
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(ix *Indexer) {
		if p != nil {
			ix.progress = p
		}
	}
}

// WithCache shares a table cache across runs.
func WithCache(c *TableCache) Option {
	return func(ix *Indexer) {
		ix.cache = c
	}
}

// WithStore persists every changed table as a snapshot and computes deltas.
func WithStore(s *storage.Store) Option {
	return func(ix *Indexer) {
		ix.store = s
	}
}

// WithSearchIndex feeds every table into a search index.
func WithSearchIndex(x *search.Index) Option {
	return func(ix *Indexer) {
		ix.search = x
	}
}

// Indexer discovers, extracts and optionally persists the source files of a
// project.
type Indexer struct {
	cfg       Config
	discovery *FileDiscovery
	engine    *engine.Engine
	logger    *logrus.Logger
	progress  ProgressReporter
	cache     *TableCache
	store     *storage.Store
	search    *search.Index
}

// New validates the discovery patterns and builds an indexer.
func New(cfg Config, opts ...Option) (*Indexer, error) {
	discovery, err := NewFileDiscovery(cfg.RootDir, cfg.Include, cfg.Ignore, cfg.Languages)
	if err != nil {
		return nil, fmt.Errorf("invalid path pattern: %w", err)
	}

	ix := &Indexer{
		cfg:       cfg,
		discovery: discovery,
		logger:    logging.Discard(),
		progress:  NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(ix)
	}

	ix.engine = engine.New(
		engine.WithLogger(ix.logger),
		engine.WithWorkers(cfg.Workers),
		engine.WithMaxSourceBytes(cfg.MaxSourceBytes),
	)
	return ix, nil
}

// ContentHash is the hash stored with snapshots to detect unchanged sources.
func ContentHash(source []byte) string {
	return strconv.FormatUint(xxhash.Sum64(source), 16)
}

// Index runs discovery and extraction. Per-file failures are reported in the
// results; only discovery, cancellation and store errors fail the run.
func (ix *Indexer) Index(ctx context.Context) (*Report, error) {
	start := time.Now()

	ix.progress.OnDiscoveryStart()
	files, err := ix.discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	ix.progress.OnDiscoveryComplete(len(files))
	ix.logger.WithFields(logrus.Fields{"root": ix.cfg.RootDir, "files": len(files)}).Info("discovered source files")

	results := make([]FileResult, len(files))
	var units []engine.Unit
	var pending []int
	for i, f := range files {
		results[i].File = f
		if table, hash, ok := ix.cache.Get(f.RelPath, f.ModTime, f.Size); ok {
			results[i].Table, results[i].Hash, results[i].Cached = table, hash, true
			continue
		}

		src, err := os.ReadFile(f.Path)
		if err != nil {
			results[i].Err = fmt.Errorf("failed to read %s: %w", f.RelPath, err)
			continue
		}
		results[i].Hash = ContentHash(src)
		units = append(units, engine.Unit{Path: f.RelPath, Language: f.Language, Source: src})
		pending = append(pending, i)
	}

	ix.progress.OnExtractionStart(len(units))
	for j, r := range ix.engine.ExtractAll(ctx, units) {
		i := pending[j]
		results[i].Table, results[i].Err = r.Table, r.Err
		if r.Err == nil {
			ix.cache.Add(files[i].RelPath, files[i].ModTime, files[i].Size, r.Table, results[i].Hash)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := Stats{Files: len(files)}
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			if err := ix.publish(ctx, r); err != nil {
				return nil, err
			}
		}
		tally(&stats, r)
		ix.progress.OnFileExtracted(*r)
	}
	stats.Duration = time.Since(start)

	ix.progress.OnComplete(stats)
	ix.logger.WithFields(logrus.Fields{
		"files":     stats.Files,
		"extracted": stats.Extracted,
		"cached":    stats.Cached,
		"failed":    stats.Failed,
		"entities":  stats.Entities,
		"saved":     stats.Saved,
		"duration":  stats.Duration,
	}).Info("indexing complete")

	return &Report{Files: results, Stats: stats}, nil
}

// publish hands a successful table to the search index and the store.
func (ix *Indexer) publish(ctx context.Context, r *FileResult) error {
	if ix.search != nil {
		if err := ix.search.Replace(ctx, r.Table); err != nil {
			return fmt.Errorf("failed to index %s for search: %w", r.File.RelPath, err)
		}
	}
	if ix.store == nil {
		return nil
	}

	var prev *symtab.Table
	latest, err := ix.store.Latest(ctx, r.File.RelPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return err
	default:
		prev = latest.Table
		if latest.ContentHash == r.Hash {
			d := symtab.Diff(prev, r.Table)
			r.Delta = &d
			return nil
		}
	}

	id, err := ix.store.Save(ctx, r.Table, r.Hash)
	if err != nil {
		return err
	}
	if _, err := ix.store.Prune(ctx, r.File.RelPath, ix.cfg.KeepSnapshots); err != nil {
		return err
	}
	d := symtab.Diff(prev, r.Table)
	r.Delta, r.SnapshotID = &d, id

	ix.logger.WithFields(logrus.Fields{
		"file":    r.File.RelPath,
		"added":   len(d.Added),
		"removed": len(d.Removed),
		"moved":   len(d.Moved),
	}).Debug("saved snapshot")
	return nil
}

func tally(s *Stats, r *FileResult) {
	switch {
	case r.Err != nil:
		s.Failed++
		return
	case r.Cached:
		s.Cached++
	default:
		s.Extracted++
	}
	s.Entities += r.Table.Len()
	s.Edges += len(r.Table.Edges())
	s.Diagnostics += len(r.Table.Diagnostics())
	if r.SnapshotID != "" {
		s.Saved++
	}
}
