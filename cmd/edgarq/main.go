package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/app"
	"github.com/kailas-cloud/edgarsearch/internal/config"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	logpkg "github.com/kailas-cloud/edgarsearch/internal/logger"
	"github.com/kailas-cloud/edgarsearch/internal/version"
)

var (
	envName      string
	verbose      bool
	showProgress bool
	cfg          config.Config
	logger       *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "edgarq",
	Short:        "Query SEC EDGAR filings from the command line",
	Long:         "edgarq classifies free-text questions and answers them from SEC EDGAR filings.",
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if envName == "" {
			envName = config.GetEnv()
		}
		var err error
		cfg, err = config.Load(envName)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := ""
		if verbose {
			level = "debug"
		}
		logger, err = logpkg.NewLogger("cli", level)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		cmd.SetContext(logpkg.ContextWithLogger(cmd.Context(), logger))
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "Config environment (local, dev, prod); defaults to $ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&showProgress, "progress", false, "Print progress of long-running steps to stderr")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(cacheCmd)
}

// buildEngine wires the networked engine for commands that talk to EDGAR.
func buildEngine(cmd *cobra.Command) (*app.Engine, error) {
	engine, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return engine, nil
}

// progressFunc prints progress events on one rewritten stderr line when --progress is set.
func progressFunc(w io.Writer) progress.Func {
	if !showProgress {
		return nil
	}
	return func(e progress.Event) {
		fmt.Fprintf(w, "\r%s %d/%d %s (eta %s)   ", e.Operation, e.Completed+1, e.Total, e.Current, e.ETA.Round(time.Second))
		if e.Completed+1 == e.Total {
			fmt.Fprintln(w)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
