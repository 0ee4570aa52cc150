package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/storage"
	"github.com/mvp-joe/semantic/internal/symtab"
)

var diffLang string

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <old> <new> | diff <file>",
	Short: "Compare symbol identifiers between two versions of a file",
	Long: `Diff extracts two versions of a file and reports which identifiers were
added, removed or moved. With a single argument the file is compared against its
newest saved snapshot.

Identifiers depend on kind, qualified name and signature only, so edits inside
function bodies show up as moves, never as additions or removals.

Examples:
  semantic diff old/lib.rs new/lib.rs
  semantic diff src/lib.rs
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(projectDir)
		if err != nil {
			return err
		}
		return executeDiff(cmd.Context(), cmd.OutOrStdout(), p, args, diffLang)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVarP(&diffLang, "lang", "l", "", "language tag (default: from the file extension)")
}

func executeDiff(ctx context.Context, w io.Writer, p *project, files []string, tag string) error {
	var prev, next *symtab.Table
	var err error

	if len(files) == 2 {
		if prev, _, err = extractFile(ctx, p, files[0], tag); err != nil {
			return err
		}
		if next, _, err = extractFile(ctx, p, files[1], tag); err != nil {
			return err
		}
	} else {
		if next, _, err = extractFile(ctx, p, files[0], tag); err != nil {
			return err
		}
		store, err := p.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Latest(ctx, next.Path())
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no snapshot of %s; run extract --save or index --save first", next.Path())
		}
		if err != nil {
			return err
		}
		prev = snap.Table
	}

	return writeDelta(w, symtab.Diff(prev, next))
}
