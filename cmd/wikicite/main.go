// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wikicite CLI. Each subcommand
// opens a wikitext file, lists its citations and applies one editing
// action, writing the file back in place.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds the credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger is built in initConfig; a no-op logger unless --verbose is set.
var logger = zap.NewNop()

// rootCmd is the base command for the wikicite CLI.
var rootCmd = &cobra.Command{
	Use:   "wikicite",
	Short: "List, edit and normalize the citations of a wikitext document",
	Long: `wikicite reads the <ref> tags and citation templates of a wikitext
file and edits them in place. Citation templates are described by their
TemplateData, fetched from the wiki and cached locally.

Citations are addressed by their number in the output of "wikicite list".
Every edit re-reads the file and rewrites only the spans it changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wikicite.yaml or ~/.config/wikicite/wikicite.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
}

func initConfig() {
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wikicite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wikicite"))
		}
	}

	viper.SetEnvPrefix("WIKICITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}

// syncLogger flushes the logger in use now, which initConfig may have
// replaced after main started.
func syncLogger() {
	_ = logger.Sync()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	syncLogger()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
