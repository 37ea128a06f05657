// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikicite/internal/citation"
	"github.com/pdiddy/wikicite/internal/session"
)

// report prints a helper status and saves the citation when it changed.
func report(a *app, it citation.Item, st session.Status) error {
	if !st.OK() {
		fmt.Fprintln(os.Stderr, st.Message)
		if st.Level == session.StatusError {
			return st.Err
		}
		return nil
	}
	fmt.Println(st.Message)
	return save(a, it)
}

var generateCmd = &cobra.Command{
	Use:   "generate <file> <n> <input>",
	Short: "Fill a citation from a URL, DOI, ISBN or typed citation",
	Long: `Generate replaces the template of citation n. A typed citation such
as "Smith, John (2020). Title." is converted locally. Anything else is
sent to the Citoid service, and the result is mapped onto the template the
wiki associates with its item type. Dates are normalized.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			input := strings.Join(args[2:], " ")
			return report(a, it, a.session.Generate(cmd.Context(), it, input))
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <file> <n>",
	Short: "Fill archive-url and archive-date from the Wayback Machine",
	Long: `Archive looks up the closest Wayback Machine snapshot of the url
parameter of citation n and fills archive-url and archive-date.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			return report(a, it, a.session.Archive(cmd.Context(), it))
		})
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <file> <n> <param> <prefix>",
	Short: "Suggest page titles for a page-name parameter",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			titles, err := a.session.SearchTitles(cmd.Context(), it, args[2], args[3])
			if err != nil {
				return err
			}
			if titles == nil {
				return errors.New("parameter " + args[2] + " does not name a page")
			}
			for _, t := range titles {
				fmt.Println(t)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(suggestCmd)
}
