package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/config"
	"github.com/mvp-joe/semantic/internal/logging"
	"github.com/mvp-joe/semantic/internal/storage"
)

var (
	projectDir string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semantic",
	Short: "Extract structural symbol tables from source code",
	Long: `semantic parses source files with tree-sitter and reduces them to a
language-neutral symbol table: modules, types, traits, implementations, functions,
enums and fields, with containment and implementation edges and identifiers that
survive edits to function bodies.

Configuration is read from .semantic/config.yml under the project directory and
SEMANTIC_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project directory holding .semantic/config.yml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging.format (text, json)")
}

// project is the loaded configuration of the directory a command runs against.
type project struct {
	root   string
	cfg    *config.Config
	logger *logrus.Logger
}

// loadProject reads configuration for dir and applies the logging flag overrides.
func loadProject(dir string) (*project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg, logger: logger}, nil
}

// openStore opens the configured snapshot store.
func (p *project) openStore() (*storage.Store, error) {
	store, err := storage.Open(p.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return store, nil
}

// unitPath names a file the way the indexer does: slash separated and relative to
// the project root when the file lives inside it.
func (p *project) unitPath(file string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return filepath.ToSlash(file)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return filepath.ToSlash(file)
	}
	return rel
}
