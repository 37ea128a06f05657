// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikicite/internal/citation"
	"github.com/pdiddy/wikicite/internal/session"
)

// --- set subcommand ---

var setCmd = &cobra.Command{
	Use:   "set <file> <n> <param=value>...",
	Short: "Set citation parameters and save",
	Long: `Set assigns template parameters of citation n and rewrites it in
canonical form. Parameters may be given by name or alias; an empty value
removes the parameter. --template switches the citation template first,
keeping the parameters. Date parameters are normalized with --dates.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			if name, _ := cmd.Flags().GetString("template"); name != "" {
				if err := a.session.SelectTemplate(cmd.Context(), it, name); err != nil {
					return err
				}
			}
			normalize, _ := cmd.Flags().GetBool("dates")
			for _, arg := range args[2:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("parameter %q: expected name=value", arg)
				}
				key = strings.TrimSpace(key)
				if err := a.session.SetField(it, key, value); err != nil {
					return errors.New(a.session.Messages().Format("no-template"))
				}
				if normalize {
					if err := a.session.NormalizeField(it, key); err != nil {
						return err
					}
				}
			}
			if today, _ := cmd.Flags().GetString("today"); today != "" {
				if err := a.session.Today(it, today); err != nil {
					return err
				}
			}
			return save(a, it)
		})
	},
}

// save writes an edited citation back and reports it.
func save(a *app, it citation.Item) error {
	if !a.session.Dirty(it) {
		fmt.Println(it.Wikitext())
		return nil
	}
	if err := a.session.Update(it); err != nil {
		if errors.Is(err, session.ErrUnlinkDependents) {
			return err
		}
		if errors.Is(err, session.ErrNotFound) {
			return errors.New(a.session.Messages().Format("not-found"))
		}
		return err
	}
	fmt.Println(it.Wikitext())
	fmt.Println(a.session.Messages().Format("update-done"))
	return nil
}

// --- rename subcommand ---

var renameCmd = &cobra.Command{
	Use:   "rename <file> <n> <name>",
	Short: "Rename a reference and its reuses and subreferences",
	Long: `Rename sets the name of reference n. Every reuse (<ref name=... />)
and subreference (<ref extends=...>) of the old name is rewritten to the
new one. An empty name is refused while the reference is still used.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			if it.Kind != citation.KindReference {
				return fmt.Errorf("citation %s is not a <ref> tag", args[1])
			}
			it.Reference.Name = strings.TrimSpace(args[2])
			return save(a, it)
		})
	},
}

// --- remove subcommand ---

var removeCmd = &cobra.Command{
	Use:   "remove <file> <n>",
	Short: "Remove a citation",
	Long: `Remove deletes citation n. A named reference that is reused or
extended elsewhere is only removed together with those tags, and only
with --yes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if err := a.session.Remove(it, yes); err != nil {
				if errors.Is(err, session.ErrNotConfirmed) {
					return fmt.Errorf("%w (use --yes)", err)
				}
				return err
			}
			fmt.Println(a.session.Messages().Format("remove-done"))
			return nil
		})
	},
}

// --- reuse subcommand ---

var reuseCmd = &cobra.Command{
	Use:   "reuse <file> <n>",
	Short: "Insert a reuse of a named reference",
	Long: `Reuse inserts <ref name="..." /> pointing at reference n at offset
--at (default: end of file).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, true, func(a *app, it citation.Item) error {
			placeCaret(cmd, a.buf)
			if err := a.session.Reuse(it); err != nil {
				if errors.Is(err, session.ErrNameRequired) {
					return errors.New(a.session.Messages().Format("reuse-name-required"))
				}
				return err
			}
			fmt.Println(a.session.Messages().Format("insert-done"))
			return nil
		})
	},
}

// --- add subcommand ---

var addCmd = &cobra.Command{
	Use:   "add <file> [param=value]...",
	Short: "Insert a new citation",
	Long: `Add inserts a new <ref> tag (or a bare template with --bare) at offset
--at (default: end of file). The citation uses --template, or the template
selected last. --name names the reference. --generate fills it from a URL,
DOI, ISBN or a typed citation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, false, func(a *app, _ citation.Item) error {
			ctx := cmd.Context()
			bare, _ := cmd.Flags().GetBool("bare")

			var it citation.Item
			if bare {
				var err error
				if it, err = a.session.NewTemplate(ctx); err != nil {
					return errors.New(a.session.Messages().Format("no-template"))
				}
			} else {
				it = a.session.NewReference(ctx)
				name, _ := cmd.Flags().GetString("name")
				it.Reference.Name = strings.TrimSpace(name)
			}

			if name, _ := cmd.Flags().GetString("template"); name != "" {
				if bare && !a.reg.Known(name) {
					return fmt.Errorf("unknown template %q", name)
				}
				if err := a.session.SelectTemplate(ctx, it, name); err != nil {
					return err
				}
			}
			if input, _ := cmd.Flags().GetString("generate"); input != "" {
				st := a.session.Generate(ctx, it, input)
				fmt.Println(st.Message)
			}
			for _, arg := range args[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("parameter %q: expected name=value", arg)
				}
				if err := a.session.SetField(it, strings.TrimSpace(key), value); err != nil {
					return errors.New(a.session.Messages().Format("no-template"))
				}
			}

			placeCaret(cmd, a.buf)
			if err := a.session.Insert(it); err != nil {
				return err
			}
			fmt.Println(it.Wikitext())
			fmt.Println(a.session.Messages().Format("insert-done"))
			return nil
		})
	},
}

// --- normalize subcommand ---

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Rewrite every citation in canonical form",
	Long: `Normalize rewrites every citation of the file in canonical form:
parameters in declared order, blank parameters dropped, block templates
one parameter per line. The first run needs --yes; later runs remember it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, args, false, func(a *app, _ citation.Item) error {
			yes, _ := cmd.Flags().GetBool("yes")
			n, err := a.session.Normalize(cmd.Context(), yes)
			if err != nil {
				if errors.Is(err, session.ErrNotConfirmed) {
					return fmt.Errorf("%w (use --yes)", err)
				}
				return err
			}
			fmt.Println(a.session.Messages().Format("normalize-done", fmt.Sprint(n)))
			return nil
		})
	},
}

// --- templates subcommand ---

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the citation templates that can be selected",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.Close()

		inRef, _ := cmd.Flags().GetBool("ref")
		selected, _ := a.store.Get(cmd.Context(), session.PrefTemplateSelected)
		for _, name := range a.session.TemplateOptions(inRef) {
			marker := " "
			if name == selected {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	setCmd.Flags().String("template", "", "switch to this citation template first")
	setCmd.Flags().Bool("dates", false, "normalize the dates being set")
	setCmd.Flags().String("today", "", "set this date parameter to today")

	removeCmd.Flags().Bool("yes", false, "also remove reuses and subreferences")

	reuseCmd.Flags().Int("at", -1, "byte offset to insert at (default: end of file)")

	addCmd.Flags().Int("at", -1, "byte offset to insert at (default: end of file)")
	addCmd.Flags().Bool("bare", false, "insert a template outside any <ref> tag")
	addCmd.Flags().String("name", "", "reference name")
	addCmd.Flags().String("template", "", "citation template (default: last selected)")
	addCmd.Flags().String("generate", "", "URL, DOI, ISBN or citation text to fill the citation from")

	normalizeCmd.Flags().Bool("yes", false, "confirm rewriting every citation")

	templatesCmd.Flags().Bool("ref", false, "only templates allowed inside <ref> tags")

	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(reuseCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(templatesCmd)
}
