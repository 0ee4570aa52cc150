package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/semantic/internal/identity"
	"github.com/mvp-joe/semantic/internal/linker"
	"github.com/mvp-joe/semantic/internal/logging"
	"github.com/mvp-joe/semantic/internal/reducer"
	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/symtab"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// ErrSourceTooLarge is returned for units above the configured size limit.
var ErrSourceTooLarge = errors.New("source exceeds size limit")

// DefaultMaxSourceBytes is the default per-unit size limit.
const DefaultMaxSourceBytes = 4 << 20

// Unit is one source buffer to extract. Path is informational; the engine never
// reads files.
type Unit struct {
	Path     string
	Language syntax.Language
	Source   []byte
}

// UnitError is a fatal failure of one unit. It wraps ErrUnsupportedLanguage,
// ErrUnparseable, ErrSourceTooLarge or a context error.
type UnitError struct {
	Path     string
	Language syntax.Language
	Op       string
	Err      error
}

func (e *UnitError) Error() string {
	name := e.Path
	if name == "" {
		name = "<buffer>"
	}
	return fmt.Sprintf("%s %s (%s): %v", e.Op, name, e.Language, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Extraction logs at debug level only.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRegistry replaces the default adapter registry.
func WithRegistry(r *syntax.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithMaxSourceBytes sets the per-unit size limit; 0 or less disables it.
func WithMaxSourceBytes(n int) Option {
	return func(e *Engine) {
		e.maxSourceBytes = n
	}
}

// WithWorkers bounds ExtractAll concurrency; 0 or less means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// Engine runs the extraction pipeline. It holds only read-only configuration and is
// safe for concurrent use.
type Engine struct {
	registry       *syntax.Registry
	logger         *logrus.Logger
	maxSourceBytes int
	workers        int
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:       syntax.DefaultRegistry(),
		logger:         logging.Discard(),
		maxSourceBytes: DefaultMaxSourceBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses, reduces, links and identifies one source buffer with a default engine.
func Extract(source []byte, lang syntax.Language) (*symtab.Table, error) {
	return New().Extract(context.Background(), Unit{Language: lang, Source: source})
}

// Extract runs the pipeline on one unit. Recoverable conditions are returned as
// table diagnostics; only fatal ones produce a *UnitError. Cancellation is checked
// between stages.
func (e *Engine) Extract(ctx context.Context, unit Unit) (*symtab.Table, error) {
	start := time.Now()
	fail := func(op string, err error) (*symtab.Table, error) {
		return nil, &UnitError{Path: unit.Path, Language: unit.Language, Op: op, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail("extract", err)
	}
	if e.maxSourceBytes > 0 && len(unit.Source) > e.maxSourceBytes {
		return fail("extract", fmt.Errorf("%w: %d bytes > %d", ErrSourceTooLarge, len(unit.Source), e.maxSourceBytes))
	}

	tree, err := e.registry.Parse(unit.Source, unit.Language)
	if err != nil {
		return fail("parse", err)
	}
	defer tree.Close()

	diags := make([]symbols.Diagnostic, 0, len(tree.Errors()))
	for _, perr := range tree.Errors() {
		diags = append(diags, symbols.Diagnostic{
			Kind:    symbols.DiagSyntaxError,
			Span:    perr.Span,
			Message: perr.Message,
		})
	}

	if err := ctx.Err(); err != nil {
		return fail("reduce", err)
	}
	cands, err := reducer.Reduce(tree)
	if err != nil {
		return fail("reduce", err)
	}

	if err := ctx.Err(); err != nil {
		return fail("link", err)
	}
	linked := linker.Link(cands)
	diags = append(diags, linked.Diagnostics...)
	entities := identity.Assign(linked.Entities, linked.Parents)

	table, err := symtab.Build(symtab.Meta{Language: string(unit.Language), Path: unit.Path}, entities, linked.Edges, diags)
	if err != nil {
		return fail("build", err)
	}

	log := e.logger.WithFields(logrus.Fields{
		"unit":        unit.Path,
		"language":    unit.Language,
		"entities":    table.Len(),
		"edges":       len(linked.Edges),
		"diagnostics": len(diags),
		"duration":    time.Since(start),
	})
	log.Debug("extracted unit")
	for _, d := range diags {
		log.WithField("diagnostic", d.Kind).Debug(d.String())
	}
	return table, nil
}

// Result is the outcome of one unit in ExtractAll. Exactly one of Table and Err is set.
type Result struct {
	Unit     Unit
	Table    *symtab.Table
	Err      error
	Duration time.Duration
}

// ExtractAll extracts independent units on a bounded worker pool. Results keep the
// order of units; a failing unit never affects the others.
func (e *Engine) ExtractAll(ctx context.Context, units []Unit) []Result {
	results := make([]Result, len(units))
	if len(units) == 0 {
		return results
	}

	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(units) {
		workers = len(units)
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, unit := range units {
		g.Go(func() error {
			start := time.Now()
			table, err := e.Extract(ctx, unit)
			results[i] = Result{Unit: unit, Table: table, Err: err, Duration: time.Since(start)}
			if err != nil {
				e.logger.WithError(err).WithField("unit", unit.Path).Warn("extraction failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
