// Package cli implements the sibyl command line: viewing, analyzing,
// validating, and serving trace files.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sibyl "github.com/sibylscope/sibyl"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sibyl",
	Short: "Trace viewer for AI agent call graphs",
	Long:  "Reads JSONL or SQLite trace files produced by the sibyl tracing library and renders them as call trees, summaries, or a live web view.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		cfg, err := sibyl.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("cli: load config: %w", err)
		}
		cfg.Apply()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a sibyl config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend picks a backend for a trace file by extension. SQLite
// databases end in .db or .sqlite; everything else is treated as JSONL.
func openBackend(path string) (sibyl.Backend, func(), error) {
	switch {
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"):
		b, err := sibyl.NewSQLiteBackend(path)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { b.Close() }, nil
	default:
		return sibyl.NewFileBackend(path), func() {}, nil
	}
}
