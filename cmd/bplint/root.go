package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bplint/bplint/pkg/config"
)

var (
	cfgFile    string
	verbose    bool
	formatFlag string
	outputFile string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "bplint",
	Short: "Static analysis for blueprint graphs",
	Long: `Bplint scans serialized blueprint programs for dead nodes, orphan
nodes, casts in hot paths, overloaded tick events, and unused functions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text, json, markdown")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write output to file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(), nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
