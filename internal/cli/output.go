package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/semantic/internal/symtab"
)

// Output formats for symbol tables.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

// writeTable renders table in the requested format.
func writeTable(w io.Writer, table *symtab.Table, format string) error {
	switch format {
	case "", formatJSON:
		data, err := table.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case formatYAML:
		data, err := table.YAML()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatText:
		return writeOutline(w, table)
	default:
		return fmt.Errorf("unknown format %q (expected json, yaml or text)", format)
	}
}

// writeOutline prints one entity per line, indented by depth, then diagnostics.
func writeOutline(w io.Writer, table *symtab.Table) error {
	for _, e := range table.Entities() {
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", e.Depth), e.Kind, e.Name)
		if e.Signature != "" {
			line += " " + e.Signature
		}
		if len(e.Modifiers) > 0 {
			mods := make([]string, 0, len(e.Modifiers))
			for _, m := range e.Modifiers {
				mods = append(mods, string(m))
			}
			line += " [" + strings.Join(mods, ",") + "]"
		}
		if e.Unresolved() {
			line += " (unresolved)"
		}
		if _, err := fmt.Fprintf(w, "%s  :%d\n", line, e.Span.StartLine); err != nil {
			return err
		}
	}
	for _, d := range table.Diagnostics() {
		if _, err := fmt.Fprintf(w, "! %s\n", d); err != nil {
			return err
		}
	}
	return nil
}

// writeDelta prints added, removed and moved identifiers.
func writeDelta(w io.Writer, d symtab.Delta) error {
	groups := []struct {
		mark string
		ids  []string
	}{
		{"+", d.Added},
		{"-", d.Removed},
		{"~", d.Moved},
	}
	for _, g := range groups {
		for _, id := range g.ids {
			if _, err := fmt.Fprintf(w, "%s %s\n", g.mark, id); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d added, %d removed, %d moved, %d unchanged\n",
		len(d.Added), len(d.Removed), len(d.Moved), len(d.Unchanged))
	return err
}
