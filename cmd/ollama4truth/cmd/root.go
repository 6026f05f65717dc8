// Package cmd provides the CLI commands for Ollama4Truth.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasfrag/ollama4truth/internal/logging"
	"github.com/lucasfrag/ollama4truth/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the ollama4truth CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ollama4truth",
		Short: "Evidence-based fact checking over Brazilian news corpora",
		Long: `Ollama4Truth verifies claims against a corpus of Brazilian
fact-checking articles using hybrid retrieval (BM25 + embeddings),
with an optional Google web-search fallback.

A claim is decomposed into verification questions by a local LLM,
evidence is gathered per question, and a verdict is produced either
by voting over corpus labels or by asking the LLM to judge.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.SetVersionTemplate("ollama4truth version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.ollama4truth/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging enables debug logging when --debug is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

// stopLogging flushes the debug log file if one was opened.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
