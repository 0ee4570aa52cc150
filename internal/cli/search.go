package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/indexer"
	"github.com/mvp-joe/semantic/internal/search"
	"github.com/mvp-joe/semantic/internal/symbols"
)

var (
	searchKind  string
	searchLang  string
	searchLimit int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query> [dir]",
	Short: "Full-text search over the symbols of a project",
	Long: `Search indexes the project in memory and matches the query against entity
names, qualified names and signatures. Name matches and name prefixes rank first.

Examples:
  semantic search Point
  semantic search calc --kind function --lang rust
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := projectDir
		if len(args) == 2 {
			dir = args[1]
		}
		p, err := loadProject(dir)
		if err != nil {
			return err
		}
		opts, err := searchOptions(searchKind, searchLang, searchLimit)
		if err != nil {
			return err
		}
		return executeSearch(cmd.Context(), cmd.OutOrStdout(), p, args[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "only entities of this kind")
	searchCmd.Flags().StringVarP(&searchLang, "lang", "l", "", "only entities of this language")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "maximum number of hits")
}

func searchOptions(kind, lang string, limit int) (search.Options, error) {
	opts := search.Options{Limit: limit}
	if kind != "" {
		k, ok := symbols.ParseKind(kind)
		if !ok {
			return opts, fmt.Errorf("unknown kind %q", kind)
		}
		opts.Kind = k
	}
	if lang != "" {
		l, err := resolveLanguage("", lang)
		if err != nil {
			return opts, err
		}
		opts.Language = l.String()
	}
	return opts, nil
}

func executeSearch(ctx context.Context, w io.Writer, p *project, query string, opts search.Options) error {
	idx, err := search.New()
	if err != nil {
		return err
	}
	defer idx.Close()

	ix, err := indexer.New(p.cfg.ToIndexerConfig(p.root),
		indexer.WithLogger(p.logger),
		indexer.WithSearchIndex(idx),
	)
	if err != nil {
		return err
	}
	if _, err := ix.Index(ctx); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	hits, err := idx.Search(ctx, query, opts)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(w, "no matches")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(w, "%s:%d\t%s\t%s", h.FilePath, h.StartLine, h.Kind, h.QualifiedName)
		if h.Signature != "" {
			fmt.Fprintf(w, " %s", h.Signature)
		}
		fmt.Fprintf(w, "\t%.3f\n", h.Score)
	}
	return nil
}
