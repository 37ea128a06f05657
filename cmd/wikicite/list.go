// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/pdiddy/wikicite/internal/citation"
	"github.com/pdiddy/wikicite/internal/csl"
	"github.com/pdiddy/wikicite/internal/document"
)

var listCmd = &cobra.Command{
	Use:   "list <file> [query]",
	Short: "List the citations of a wikitext file",
	Long: `List prints the top-level citations of the file in document order:
<ref> tags (reuses included, subreferences under their parent) and
citation templates outside any tag. A query keeps the citations whose
name, snippet or wikitext contains it, ignoring case.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	all := a.session.List("")
	query := ""
	if len(args) > 1 {
		query = args[1]
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "csl":
		return csl.Format(citation.Filter(all, query), os.Stdout)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listRows(a.buf.Text(), all, query))
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json or csl", format)
	}

	rows := listRows(a.buf.Text(), all, query)
	if len(rows) == 0 {
		fmt.Println(a.session.Messages().Format("list-empty"))
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-9s  %-6s  %-16s  %s\n", "#", "Kind", "Line", "Name", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range rows {
		fmt.Fprintf(os.Stdout, "%-4d  %-9s  %-6d  %-16s  %s\n",
			r.Number, r.Kind, r.Line, truncate(r.Name, 16), truncate(r.Snippet, 50))
		for _, sub := range r.Subrefs {
			fmt.Fprintf(os.Stdout, "%-4s  %-9s  %-6d  %-16s  %s\n",
				"", "  subref", sub.Line, "", truncate(sub.Snippet, 50))
		}
	}
	fmt.Fprintf(os.Stdout, "\n%s\n", a.session.Messages().Format("list-count", fmt.Sprint(len(rows))))
	return nil
}

// listRow is one line of list output. Number addresses the citation in
// the other commands and does not change with the query.
type listRow struct {
	Number  int       `json:"number"`
	Kind    string    `json:"kind"`
	Line    int       `json:"line"`
	Name    string    `json:"name,omitempty"`
	Letter  string    `json:"letter,omitempty"`
	Snippet string    `json:"snippet"`
	Subrefs []listRow `json:"subrefs,omitempty"`
}

func listRows(text string, all []citation.Item, query string) []listRow {
	keep := make(map[int]bool)
	for _, it := range citation.Filter(all, query) {
		keep[it.Index()] = true
	}

	var rows []listRow
	for i, it := range all {
		if !keep[it.Index()] {
			continue
		}
		row := listRow{
			Number:  i + 1,
			Kind:    it.Kind.String(),
			Line:    document.LineOf(text, it.Index()),
			Name:    it.Name(),
			Snippet: it.Snippet(),
		}
		if it.Kind == citation.KindReference {
			r := it.Reference
			row.Letter = r.Letter
			if r.Role() == citation.RoleReuse {
				row.Kind = "reuse"
				if r.Letter != "" {
					row.Snippet = "(" + r.Letter + ")"
				}
			}
			for _, sub := range r.Subrefs {
				row.Subrefs = append(row.Subrefs, listRow{
					Kind:    "subref",
					Line:    document.LineOf(text, sub.Index),
					Snippet: sub.Snippet(),
				})
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

var showCmd = &cobra.Command{
	Use:   "show <file> <n>",
	Short: "Show the fields of one citation",
	Long: `Show prints the wikitext of citation n and the form fields of its
citation template. Optional fields without a value are hidden unless --all
is set. --dump prints the parsed citation model instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			if dump, _ := cmd.Flags().GetBool("dump"); dump {
				pp.Println(it)
				return nil
			}
			showAll, _ := cmd.Flags().GetBool("all")

			fmt.Println(it.Wikitext())
			if deps := a.session.Dependents(it); len(deps) > 0 {
				fmt.Printf("\nUsed %d more times.\n", len(deps))
			}
			t := it.Citation()
			if t == nil {
				fmt.Println()
				fmt.Println(a.session.Messages().Format("no-template"))
				return nil
			}

			fmt.Printf("\nTemplate: %s\n\n", t.Canonical())
			for _, f := range a.session.Fields(it) {
				if !f.Visible && !showAll {
					continue
				}
				marker := " "
				switch {
				case f.Required:
					marker = "*"
				case f.Deprecated:
					marker = "!"
				}
				label := f.Label
				if f.Key != f.Name {
					label += " (" + f.Key + ")"
				}
				fmt.Printf("%s %-28s %s\n", marker, truncate(label, 28), f.Value)
			}
			if missing := t.MissingRequired(); len(missing) > 0 {
				fmt.Println()
				fmt.Println(a.session.Messages().Format("template-missing", strings.Join(missing, ", ")))
			}
			return nil
		})
	},
}

func init() {
	listCmd.Flags().String("format", "table", "output format: table, json or csl")

	showCmd.Flags().Bool("all", false, "show optional fields without a value")
	showCmd.Flags().Bool("dump", false, "print the parsed citation model")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
