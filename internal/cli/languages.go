package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semantic/internal/syntax"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their file extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeLanguages(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func executeLanguages(w io.Writer) error {
	for _, lang := range syntax.DefaultRegistry().Languages() {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", lang, strings.Join(syntax.ExtensionsFor(lang), " ")); err != nil {
			return err
		}
	}
	return nil
}
