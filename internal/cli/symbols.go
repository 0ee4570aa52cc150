package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/storage"
)

var (
	symbolsKind string
	symbolsLang string
	symbolsFile string
	symbolsAll  bool
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols <name>",
	Short: "Look up saved symbols by name",
	Long: `Symbols queries the snapshot store. The name matches either the simple or
the qualified name; '*' is a wildcard. Only the newest snapshot of each file is
searched unless --all is given.

Examples:
  semantic symbols Point
  semantic symbols 'geo::*' --kind function
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(projectDir)
		if err != nil {
			return err
		}
		opts, err := searchOptions(symbolsKind, symbolsLang, 0)
		if err != nil {
			return err
		}
		q := storage.SymbolQuery{
			Name:         args[0],
			Kind:         opts.Kind,
			Language:     opts.Language,
			FilePath:     symbolsFile,
			AllSnapshots: symbolsAll,
		}
		return executeSymbols(cmd.Context(), cmd.OutOrStdout(), p, q)
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().StringVarP(&symbolsKind, "kind", "k", "", "only entities of this kind")
	symbolsCmd.Flags().StringVarP(&symbolsLang, "lang", "l", "", "only entities of this language")
	symbolsCmd.Flags().StringVar(&symbolsFile, "file", "", "only entities of this file")
	symbolsCmd.Flags().BoolVar(&symbolsAll, "all", false, "search every saved snapshot")
}

func executeSymbols(ctx context.Context, w io.Writer, p *project, q storage.SymbolQuery) error {
	store, err := p.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.FindSymbols(ctx, q)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no matches")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s:%d\t%s\t%s\n", r.FilePath, r.StartLine, r.Kind, r.ID)
	}
	return nil
}
