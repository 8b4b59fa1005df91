package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/htmlgrader/internal/checks"
	"github.com/nao1215/htmlgrader/internal/config"
	"github.com/nao1215/htmlgrader/internal/grader"
	"github.com/nao1215/htmlgrader/internal/log"
	"github.com/nao1215/htmlgrader/internal/pipeline"
	"github.com/nao1215/htmlgrader/internal/report"
	"github.com/nao1215/htmlgrader/internal/source"
	"github.com/nao1215/htmlgrader/internal/tor"
)

// addCheckFlags registers the grading flags on the root command.
func addCheckFlags(cmd *cobra.Command) {
	// Input
	cmd.Flags().StringP("checks", "c", config.DefaultChecksFile,
		"JSON file with the list of CSS selectors to check")
	cmd.Flags().StringP("file", "f", "",
		"HTML file to check")
	cmd.Flags().String("url", "",
		"URL of the page to check (ignored when --file is given)")

	// Fetching
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP request timeout (0 means no timeout)")
	cmd.Flags().StringP("user-agent", "A", config.DefaultUserAgent,
		"User-Agent header for --url")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes (0 means no limit)")
	cmd.Flags().String("encoding", "",
		"Character encoding of the document (default: detect)")
	cmd.Flags().StringP("settings", "s", "",
		"Settings file with per-host headers and cookies (default: .htmlgrader in current or config directory)")

	// Tor
	cmd.Flags().String("tor-proxy", "",
		"Fetch --url through an existing Tor SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and fetch --url through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Report
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown report (mutually exclusive with --text)")
	cmd.Flags().Bool("text", false,
		"Output a plain text report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("compact", false,
		"Output the JSON report on one line")
	cmd.Flags().Bool("missing-only", false,
		"List only unmatched selectors (requires --text)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file (creates directories if needed)")

	// History
	cmd.Flags().Bool("save", false,
		"Record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
}

// validateInputFiles fails fast when an input file does not exist.
//
// The checks file is only required when a document will actually be
// graded, or when it was given explicitly, so a bare invocation stays a
// no-op even without checks.json in the current directory.
func validateInputFiles(cmd *cobra.Command, _ []string) error {
	checksFile, err := cmd.Flags().GetString("checks")
	if err != nil {
		return err
	}
	htmlFile, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	url, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("checks") || htmlFile != "" || url != "" {
		if _, err := checks.AssertFileExists(checksFile); err != nil {
			return err
		}
	}
	if htmlFile != "" {
		if _, err := checks.AssertFileExists(htmlFile); err != nil {
			return err
		}
	}
	return nil
}

// runCheckCmd executes the root command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ChecksFile, err = flags.GetString("checks"); err != nil {
		return nil, err
	}
	if cfg.HTMLFile, err = flags.GetString("file"); err != nil {
		return nil, err
	}
	if cfg.URL, err = flags.GetString("url"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.Encoding, err = flags.GetString("encoding"); err != nil {
		return nil, err
	}
	if cfg.SettingsFile, err = flags.GetString("settings"); err != nil {
		return nil, err
	}
	if cfg.TorProxyAddress, err = flags.GetString("tor-proxy"); err != nil {
		return nil, err
	}
	if cfg.EmbeddedTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.TextReport, err = flags.GetBool("text"); err != nil {
		return nil, err
	}
	if cfg.CompactJSON, err = flags.GetBool("compact"); err != nil {
		return nil, err
	}
	if cfg.MissingOnly, err = flags.GetBool("missing-only"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveHistory, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.Encoding != "" {
		if _, err := source.LookupEncoding(cfg.Encoding); err != nil {
			return nil, err
		}
	}

	// An explicitly given settings file must exist; the default locations
	// are optional.
	settingsPath := config.FindSettingsFile(cfg.SettingsFile)
	switch {
	case settingsPath != "":
		cfg.Settings, err = config.LoadSettings(settingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings file %s: %w", settingsPath, err)
		}
	case cfg.SettingsFile != "":
		return nil, fmt.Errorf("%w: %s", config.ErrSettingsNotFound, cfg.SettingsFile)
	}

	return cfg, nil
}

// runCheck grades one document and writes the report.
func runCheck(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	var loader pipeline.Step

	switch cfg.Mode() {
	case config.ModeNone:
		logger.Debug("neither --file nor --url given, nothing to check")
		return nil

	case config.ModeFile:
		loader = pipeline.NewFileLoadStep(cfg.ChecksFile, cfg.HTMLFile)

	case config.ModeURL:
		fetcher, cleanup, err := newFetcher(ctx, cfg, stderr, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		logger.Debug("fetching document", "url", cfg.URL, "tor", cfg.UseTor())
		loader = pipeline.NewURLLoadStep(cfg.ChecksFile, cfg.URL, fetcher, stdout)
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		loader,
		pipeline.NewParseStep(cfg.Encoding),
		pipeline.NewGradeStep(grader.New(grader.WithLogger(logger))),
		pipeline.NewReportStep(reportFormat(cfg), stdout, cfg.ReportFile, report.Options{
			Compact:     cfg.CompactJSON,
			MissingOnly: cfg.MissingOnly,
		}),
	)
	if cfg.SaveHistory {
		p.AddStep(pipeline.NewSaveStep(cfg.DBDir, logger))
	}
	logger.Debug("pipeline assembled", "steps", p.StepNames())

	state := &pipeline.State{}
	if err := p.Execute(ctx, state); err != nil {
		return err
	}

	logger.Debug("check completed",
		"source", state.Document.Location,
		"bytes", len(state.Document.Raw),
		"hash", state.Document.Hash,
		"selectors", state.Report.Len(),
		"steps", state.Steps,
	)
	return nil
}

// newFetcher builds the URL fetcher, starting or checking Tor when asked.
// The returned cleanup must always be called.
func newFetcher(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *slog.Logger) (*source.Fetcher, func(), error) {
	cleanup := func() {}
	opts := []source.FetcherOption{
		source.WithTimeout(cfg.Timeout),
		source.WithUserAgent(cfg.UserAgent),
		source.WithMaxBodySize(cfg.MaxBodySize),
		source.WithSettings(cfg.Settings),
		source.WithFetcherLogger(logger),
	}

	switch {
	case cfg.TorProxyAddress != "":
		client, err := tor.NewClient(cfg.TorProxyAddress)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, cleanup, fmt.Errorf("tor proxy check failed: %w (make sure Tor is running at %s)",
				status.Err(), client.ProxyAddress())
		}
		logger.Debug("Tor proxy connection verified", "address", client.ProxyAddress())
		opts = append(opts, source.WithTor(client))

	case cfg.EmbeddedTor:
		client, daemon, err := startEmbeddedTor(ctx, cfg, stderr, logger)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			logger.Debug("stopping embedded Tor daemon")
			if err := daemon.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		opts = append(opts, source.WithTor(client))
	}

	return source.NewFetcher(opts...), cleanup, nil
}

// startEmbeddedTor starts a tornago-managed Tor daemon and returns a client
// for its SOCKS port.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *slog.Logger) (*tor.Client, *tor.Daemon, error) {
	fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
	fmt.Fprintln(stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.")

	daemon := tor.NewDaemon(cfg.TorStartupTimeout)
	if err := daemon.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Debug("embedded Tor daemon started", "socksAddr", daemon.SocksAddr())

	client, err := daemon.Client()
	if err != nil {
		_ = daemon.Stop() //nolint:errcheck // best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}
	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = daemon.Stop() //nolint:errcheck // best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
	}

	return client, daemon, nil
}

// reportFormat maps the report flags to a format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	case cfg.TextReport:
		return report.FormatText
	default:
		return report.FormatJSON
	}
}
