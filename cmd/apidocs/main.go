package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/PentesterFlow/apidocs/internal/logger"
	"github.com/PentesterFlow/apidocs/internal/output"
	"github.com/PentesterFlow/apidocs/internal/shutdown"
	"github.com/PentesterFlow/apidocs/pkg/scraper"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool
	logLevel   string

	// Scrape flags
	baseURL     string
	listingPath string
	timeout     int
	rateLimit   float64
	outputFile  string
	pretty      bool
	userAgent   string
	showSummary bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "apidocs",
		Short: "apidocs - API reference documentation scraper",
		Long: `apidocs - Scrapes an API reference site into a JSON description of its endpoints.

Lists every reference page linked from the documentation index, extracts each
endpoint's method, path and parameters, and infers a type for every parameter.
The JSON result is written to stdout; dropped parameters are reported on stderr.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration",
		Long:  "Write the default configuration to a file (.json for JSON, anything else YAML).",
		Args:  cobra.ExactArgs(1),
		RunE:  runInitConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, disabled); overrides --verbose/--debug")

	// Scrape flags
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "Documentation site root (default: https://dev.twitter.com)")
	rootCmd.Flags().StringVar(&listingPath, "listing-path", "", "Path of the listing page (default: /rest/public)")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 30, "Request timeout in seconds")
	rootCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 0, "Requests per second (0: unlimited)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "User agent string")
	rootCmd.Flags().BoolVar(&showSummary, "summary", false, "Print a run summary to stderr")

	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*scraper.Config, error) {
	if configFile == "" {
		return scraper.DefaultConfig(), nil
	}
	config, err := scraper.LoadFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return config, nil
}

// flagOptions turns the flags that were set into options applied over the
// loaded configuration.
func flagOptions(cmd *cobra.Command, config *scraper.Config) ([]scraper.Option, error) {
	opts := []scraper.Option{scraper.WithConfig(config)}

	if cmd.Flags().Changed("base-url") {
		opts = append(opts, scraper.WithBaseURL(baseURL))
	}
	if cmd.Flags().Changed("listing-path") {
		opts = append(opts, scraper.WithListingPath(listingPath))
	}
	if cmd.Flags().Changed("timeout") {
		opts = append(opts, scraper.WithTimeout(time.Duration(timeout)*time.Second))
	}
	if cmd.Flags().Changed("rate-limit") {
		opts = append(opts, scraper.WithRateLimit(rateLimit, config.RateLimit.Burst))
	}
	if cmd.Flags().Changed("user-agent") {
		opts = append(opts, scraper.WithUserAgent(userAgent))
	}
	if verbose {
		opts = append(opts, scraper.WithVerbose(true))
	}
	if debug {
		opts = append(opts, scraper.WithDebug(true))
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := logger.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		opts = append(opts, scraper.WithLogLevel(logLevel))
	}

	// Output is handled here, not by the scraper.
	if cmd.Flags().Changed("output") {
		config.Output.FilePath = outputFile
	}
	if cmd.Flags().Changed("pretty") {
		config.Output.Pretty = pretty
	}

	return opts, nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := flagOptions(cmd, config)
	if err != nil {
		return err
	}

	s, err := scraper.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create scraper: %w", err)
	}

	handler := shutdown.New(shutdown.Config{
		OnSignal: func(sig os.Signal) {
			fmt.Fprintf(os.Stderr, "\nReceived %v, stopping...\n", sig)
		},
	})
	defer handler.Shutdown()

	result, err := s.Run(handler.Context())
	if err != nil {
		if handler.IsShuttingDown() {
			return fmt.Errorf("scrape interrupted: %w", err)
		}
		return fmt.Errorf("scrape failed: %w", err)
	}

	// Nothing is written unless every page parsed.
	var dst io.Writer = os.Stdout
	if config.Output.FilePath != "" {
		f, err := os.Create(config.Output.FilePath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		dst = f
	}

	w, err := output.NewWriter(dst, config.Output)
	if err != nil {
		return err
	}
	if config.Output.FilePath != "" {
		handler.Register("output", func(_ context.Context) error { return w.Close() })
	}

	if err := w.WriteEndpoints(result.Endpoints); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Close the output file now so a failed close fails the run.
	handler.Shutdown()
	if errs := handler.Errors(); len(errs) > 0 {
		return fmt.Errorf("failed to close output: %w", stderrors.Join(errs...))
	}

	if showSummary {
		printSummary(result)
	}
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if err := scraper.DefaultConfig().SaveToFile(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Configuration written to %s\n", args[0])
	return nil
}

func printSummary(result *scraper.Result) {
	stats := result.Stats
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Scrape Summary")
	fmt.Fprintln(os.Stderr, "==============")
	fmt.Fprintf(os.Stderr, "Duration:           %v\n", result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Requests:           %d\n", stats.RequestsTotal)
	fmt.Fprintf(os.Stderr, "Reference Pages:    %d\n", stats.PathsListed)
	fmt.Fprintf(os.Stderr, "Endpoints:          %d\n", len(result.Endpoints))
	fmt.Fprintf(os.Stderr, "Parameters:         %d\n", stats.ParamsParsed)
	fmt.Fprintf(os.Stderr, "Dropped Parameters: %d\n", stats.ParamsDropped)
	fmt.Fprintln(os.Stderr)
}
