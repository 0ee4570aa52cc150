package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/indexer"
)

var (
	quietFlag bool
	indexSave bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Extract every source file of a project",
	Long: `Index discovers source files under the project directory using the
paths.include and paths.ignore globs, extracts them in parallel and prints a
summary. With --save (or storage.enabled) each changed file is stored as a
snapshot and the difference to its previous snapshot is reported.

Examples:
  # Index the current directory
  semantic index

  # Index another project and keep snapshots
  semantic index ../service --save

  # No progress output
  semantic index --quiet
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := projectDir
		if len(args) == 1 {
			dir = args[0]
		}
		p, err := loadProject(dir)
		if err != nil {
			return err
		}
		return executeIndex(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), p, quietFlag, indexSave)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVar(&indexSave, "save", false, "save snapshots of changed files")
}

func executeIndex(ctx context.Context, out, progressOut io.Writer, p *project, quiet, save bool) error {
	opts := []indexer.Option{
		indexer.WithLogger(p.logger),
		indexer.WithProgress(NewCLIProgressReporter(progressOut, quiet)),
	}
	if save || p.cfg.Storage.Enabled {
		store, err := p.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, indexer.WithStore(store))
	}

	ix, err := indexer.New(p.cfg.ToIndexerConfig(p.root), opts...)
	if err != nil {
		return err
	}

	report, err := ix.Index(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	for _, r := range report.Files {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "FAIL %s: %v\n", r.File.RelPath, r.Err)
		case r.Delta != nil && r.SnapshotID != "":
			fmt.Fprintf(out, "%s: %d entities (+%d -%d ~%d)\n", r.File.RelPath, r.Table.Len(),
				len(r.Delta.Added), len(r.Delta.Removed), len(r.Delta.Moved))
		case !quiet:
			fmt.Fprintf(out, "%s: %d entities, %d diagnostics\n", r.File.RelPath, r.Table.Len(), len(r.Table.Diagnostics()))
		}
	}

	s := report.Stats
	fmt.Fprintf(out, "%d files: %d extracted, %d failed, %d entities, %d edges, %d diagnostics, %d saved\n",
		s.Files, s.Extracted, s.Failed, s.Entities, s.Edges, s.Diagnostics, s.Saved)
	return nil
}
