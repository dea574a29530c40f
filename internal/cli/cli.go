package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/ibew-locals/internal/config"
	"github.com/pfrederiksen/ibew-locals/internal/directory"
	"github.com/pfrederiksen/ibew-locals/internal/export"
	"github.com/pfrederiksen/ibew-locals/internal/logger"
	"github.com/pfrederiksen/ibew-locals/internal/metrics"
	"github.com/pfrederiksen/ibew-locals/internal/pipeline"
	"github.com/pfrederiksen/ibew-locals/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagStates      string
	flagOutput      string
	flagConfig      string
	flagWorkers     int
	flagTimeout     time.Duration
	flagLogLevel    string
	flagFormat      string
	flagMetricsFile string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ibew-locals",
		Short: "Export IBEW local unions with member counts to a spreadsheet",
		Long: `Collects IBEW local unions for the given states from the IBEW directory,
including trade classifications and county coverage, joins them with member
counts scraped from UnionFacts, and writes the result to an .xlsx workbook.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExport,
	}

	// Define flags
	cmd.Flags().StringVar(&flagStates, "states", "", "Comma-separated state codes, e.g. NY,CA (required)")
	cmd.Flags().StringVar(&flagOutput, "output", config.DefaultOutput, "Output workbook path (.xlsx)")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Optional JSON5 config file")
	cmd.Flags().IntVar(&flagWorkers, "workers", directory.DefaultWorkers, fmt.Sprintf("Concurrent detail requests (1-%d)", directory.MaxWorkers))
	cmd.Flags().DurationVar(&flagTimeout, "timeout", directory.Timeout, "Per-request timeout")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", string(logger.LevelInfo), "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	cmd.MarkFlagRequired("states")

	return cmd
}

// settings resolves flags and config into a validated run configuration.
// It performs no network activity.
func settings(cmd *cobra.Command) (config.Config, []string, OutputFormat, error) {
	states, err := config.ParseStates(flagStates)
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("--states: %w", err)
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return config.Config{}, nil, "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, nil, "", err
	}

	// Flags given explicitly win over the config file
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = flagOutput
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout.String()
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, "", err
	}
	return cfg, states, format, nil
}

// runExport is the main command logic
func runExport(cmd *cobra.Command, args []string) error {
	cfg, states, format, err := settings(cmd)
	if err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	timeout, _ := cfg.TimeoutDuration()
	rec := metrics.New()

	dir := directory.New(directory.Options{
		BaseURL:   cfg.DirectoryURL,
		Timeout:   timeout,
		UserAgent: cfg.UserAgent,
		Workers:   cfg.Workers,
		Metrics:   rec,
	})
	sc := scraper.New(scraper.Options{
		URL:       cfg.MembershipURL,
		Timeout:   timeout,
		UserAgent: cfg.UserAgent,
		Metrics:   rec,
	})

	logger.Info("Starting export", logger.Fields{
		"states":  states,
		"output":  cfg.Output,
		"workers": cfg.Workers,
		"timeout": timeout.String(),
	})

	result, err := pipeline.New(dir, sc, rec).Run(cmd.Context(), states)
	if err != nil {
		writeMetrics(rec)
		return err
	}

	if err := export.WriteXLSX(cfg.Output, result.Records); err != nil {
		writeMetrics(rec)
		return err
	}

	summary := NewRunSummary(result, cfg.Output, export.RowCount(result.Records))
	logger.Info("Export complete", logger.Fields{
		"output": cfg.Output,
		"rows":   summary.Rows,
		"locals": summary.Locals,
	})

	if err := writeMetrics(rec); err != nil {
		return err
	}

	if err := WriteOutput(cmd.OutOrStdout(), summary, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// writeMetrics dumps rec to --metrics-file when one was given
func writeMetrics(rec *metrics.Recorder) error {
	if flagMetricsFile == "" {
		return nil
	}
	if err := rec.WriteTextfile(flagMetricsFile); err != nil {
		logger.Error("Writing metrics failed", logger.Fields{"path": flagMetricsFile}, err)
		return err
	}
	return nil
}

// Execute runs the CLI. Interrupts cancel in-flight requests.
func Execute(version string) {
	cmd := NewRootCmd()
	cmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
