package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/velotools/velocheck/internal/config"
	"github.com/velotools/velocheck/internal/probe"
	"github.com/velotools/velocheck/internal/report"
	"github.com/velotools/velocheck/internal/validate"
	"github.com/velotools/velocheck/internal/vco"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	// Run command flags
	runStrict      bool
	runConcurrency int
	runTimeout     time.Duration
	runVerbose     bool
	runInsecure    bool
	runFormat      string
	runHistoryPath string
	runSchemaDir   string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [endpoint ...]",
	Short: "Probe endpoints and validate their payloads",
	Long: `Fetch each endpoint from the configured orchestrator and validate the
payload against its schema. Endpoints are probed independently: one broken
endpoint never hides the results of the others.

Without arguments every registered endpoint is probed; name endpoints to
probe a subset.

Example:
  velocheck run
  velocheck run enterprise enterprise_edges
  velocheck run --strict --format json`,
	Args: cobra.ArbitraryArgs,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Report undeclared payload fields as discrepancies")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 4, "Number of endpoints to probe in parallel")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-endpoint fetch timeout (0 uses HTTP_TIMEOUT)")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Verbose output, including failing payloads")
	runCmd.Flags().BoolVar(&runInsecure, "insecure", false, "Skip TLS certificate verification")
	runCmd.Flags().StringVar(&runFormat, "format", formatText, "Report format (text, json)")
	runCmd.Flags().StringVar(&runHistoryPath, "history", "", "Append the run to a sqlite history database at this path")
	runCmd.Flags().StringVar(&runSchemaDir, "schema-dir", "", "Directory of extra endpoint definitions (YAML)")
}

func runProbes(_ *cobra.Command, args []string) error {
	log := newLogger(runVerbose)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if runStrict {
		cfg.StrictFields = true
	}

	if runInsecure {
		cfg.InsecureSkipVerify = true
	}

	sink, closeSinks, err := buildSinks(log)
	if err != nil {
		return err
	}
	defer closeSinks()

	return executeRun(log, cfg, args, sink)
}

// executeRun wires the probe pipeline and writes the report. It is shared by
// the run command and the interactive menu.
func executeRun(log logrus.FieldLogger, cfg *config.Config, names []string, sink report.Sink) error {
	registry, err := buildRegistry(log, cfg, runSchemaDir)
	if err != nil {
		return err
	}

	client := vco.NewClient(log, vco.ClientConfig{
		Host:               cfg.Host,
		Token:              cfg.APIToken,
		Timeout:            cfg.HTTPTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})

	var opts []validate.Option
	if cfg.StrictFields {
		opts = append(opts, validate.WithStrict())
	}

	runner := probe.NewRunner(log, probe.RunnerConfig{
		Registry:  registry,
		Fetcher:   client,
		Validator: validate.NewValidator(opts...),
		Workers:   runConcurrency,
		Timeout:   runTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupCancelHandler(cancel)

	start := time.Now()

	results, err := runner.Run(ctx, names)
	if err != nil {
		return fmt.Errorf("running probes: %w", err)
	}

	summary := probe.Summarize(results, time.Since(start))

	if err := sink.Write(results, summary); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if !summary.Clean() {
		return fmt.Errorf("some endpoints failed validation")
	}

	return nil
}

// buildRegistry registers the builtin endpoint set plus any user-supplied
// definitions, then freezes the result.
func buildRegistry(log logrus.FieldLogger, cfg *config.Config, schemaDir string) (*probe.Registry, error) {
	registry := probe.NewRegistry()

	params := vco.BuiltinParams{EnterpriseID: strconv.Itoa(cfg.EnterpriseID)}
	if cfg.EdgeID > 0 {
		params.EdgeID = strconv.Itoa(cfg.EdgeID)
	}

	if err := vco.RegisterBuiltins(registry, params); err != nil {
		return nil, fmt.Errorf("registering builtin endpoints: %w", err)
	}

	if schemaDir != "" {
		defs, err := probe.NewLoader(log, schemaDir).LoadAll()
		if err != nil {
			return nil, fmt.Errorf("loading endpoint definitions: %w", err)
		}

		for _, def := range defs {
			ep, err := def.Endpoint()
			if err != nil {
				return nil, fmt.Errorf("definition %s: %w", def.Name, err)
			}

			if err := registry.Register(ep); err != nil {
				return nil, err
			}
		}
	}

	if err := registry.Freeze(); err != nil {
		return nil, fmt.Errorf("freezing registry: %w", err)
	}

	return registry, nil
}

// buildSinks assembles the report destinations selected by the run flags.
// The returned closer releases the history database, if one was opened.
func buildSinks(log logrus.FieldLogger) (report.Sink, func(), error) {
	var sinks report.Multi

	switch runFormat {
	case formatText:
		sinks = append(sinks, report.NewConsole(log, os.Stdout, runVerbose))
	case formatJSON:
		sinks = append(sinks, report.NewJSON(log, os.Stdout))
	default:
		return nil, nil, fmt.Errorf("unknown format %q (want text or json)", runFormat)
	}

	closeSinks := func() {}

	if runHistoryPath != "" {
		history, err := report.NewHistory(log, runHistoryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history: %w", err)
		}

		sinks = append(sinks, history)
		closeSinks = func() { _ = history.Close() }
	}

	return sinks, closeSinks, nil
}

// setupCancelHandler cancels the run on Ctrl+C so in-flight probes stop
// promptly instead of running to their timeouts.
func setupCancelHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Warn("\nReceived interrupt signal, stopping probes...")
		cancel()
	}()
}
