package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/engine"
	"github.com/mvp-joe/semantic/internal/indexer"
	"github.com/mvp-joe/semantic/internal/symtab"
	"github.com/mvp-joe/semantic/internal/syntax"
)

var (
	extractLang   string
	extractFormat string
	extractSave   bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the symbol table of one source file",
	Long: `Extract parses one file and prints its symbol table.

Examples:
  # JSON symbol table, language from the extension
  semantic extract src/lib.rs

  # Indented outline
  semantic extract --format text main.go

  # Force a language and keep a snapshot for later diffs
  semantic extract --lang typescript --save component.mts
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject(projectDir)
		if err != nil {
			return err
		}
		return executeExtract(cmd.Context(), cmd.OutOrStdout(), p, args[0], extractLang, extractFormat, extractSave)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractLang, "lang", "l", "", "language tag (default: from the file extension)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatJSON, "output format: json, yaml or text")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "save a snapshot to the store")
}

// resolveLanguage picks the --lang tag when given, otherwise the file extension.
func resolveLanguage(file, tag string) (syntax.Language, error) {
	if tag != "" {
		lang, ok := syntax.LanguageFromTag(tag)
		if !ok {
			return "", fmt.Errorf("%w: %q", syntax.ErrUnsupportedLanguage, tag)
		}
		return lang, nil
	}
	lang, ok := syntax.LanguageForPath(file)
	if !ok {
		return "", fmt.Errorf("%w: cannot detect language of %s (use --lang)", syntax.ErrUnsupportedLanguage, file)
	}
	return lang, nil
}

// extractFile reads and extracts one file, returning its table and content hash.
func extractFile(ctx context.Context, p *project, file, tag string) (*symtab.Table, string, error) {
	lang, err := resolveLanguage(file, tag)
	if err != nil {
		return nil, "", err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", file, err)
	}

	eng := engine.New(
		engine.WithLogger(p.logger),
		engine.WithMaxSourceBytes(p.cfg.Extraction.MaxSourceBytes),
	)
	table, err := eng.Extract(ctx, engine.Unit{Path: p.unitPath(file), Language: lang, Source: src})
	if err != nil {
		return nil, "", err
	}
	return table, indexer.ContentHash(src), nil
}

func executeExtract(ctx context.Context, w io.Writer, p *project, file, tag, format string, save bool) error {
	table, hash, err := extractFile(ctx, p, file, tag)
	if err != nil {
		return err
	}

	if save {
		store, err := p.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.Save(ctx, table, hash)
		if err != nil {
			return err
		}
		if _, err := store.Prune(ctx, table.Path(), p.cfg.Storage.KeepSnapshots); err != nil {
			return err
		}
		p.logger.WithField("snapshot", id).WithField("file", table.Path()).Info("saved snapshot")
	}

	return writeTable(w, table, format)
}
