// investdash serves a password-gated investment research dashboard and runs
// the same analysis from the terminal.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/investdash/api"
	"github.com/seenimoa/investdash/internal/config"
	"github.com/seenimoa/investdash/internal/dashboard"
	"github.com/seenimoa/investdash/internal/datasource"
	"github.com/seenimoa/investdash/internal/fetcher"
	"github.com/seenimoa/investdash/internal/gate"
	"github.com/seenimoa/investdash/internal/logging"
	"github.com/seenimoa/investdash/internal/metrics"
	"github.com/seenimoa/investdash/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by PersistentPreRunE.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "investdash",
	Short: "Investment Research Dashboard",
	Long: `investdash fetches quotes, price history and financial statements from
Yahoo Finance for a list of tickers and presents them as an overview, price
charts, financial metrics and a side-by-side comparison.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("investdash %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		api.Version = version
		srv, err := api.NewServer(cfg, api.Deps{Logger: &logger})
		if err != nil {
			return err
		}
		logger.Info().
			Str("addr", cfg.Server.Addr()).
			Dur("pacing", cfg.Fetch.Pacing).
			Bool("news", cfg.News.Enabled).
			Msg("starting dashboard server")
		return srv.ListenAndServe(cfg.Server.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [tickers]",
	Short: "Analyze stocks and print the dashboard as Markdown",
	Long: `Fetch every ticker in order and print the four dashboard views.

Examples:
  investdash analyze "AAPL, MSFT, GOOGL"
  investdash analyze TSLA --period "5 Years" --plain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		periodLabel, _ := cmd.Flags().GetString("period")
		password, _ := cmd.Flags().GetString("password")
		plain, _ := cmd.Flags().GetBool("plain")

		if password == "" {
			password = cfg.Auth.Password
		}
		if !gate.New(cfg.Auth.Password).CheckAccess(password) {
			return fmt.Errorf("incorrect password")
		}

		req, err := models.ParseRequest(args[0], periodLabel)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res := newFetcher().FetchAll(ctx, req, func(ev fetcher.Event) {
			if ev.Kind != fetcher.EventWarning {
				fmt.Fprintln(os.Stderr, ev.Message)
			}
		})

		if res.TotalFailure() {
			for _, w := range res.Warnings {
				fmt.Fprintln(os.Stderr, "warning:", w)
			}
			return fmt.Errorf("could not fetch data for any stocks: this might be rate limiting, invalid ticker symbols or network issues; try again in a few minutes with fewer stocks")
		}

		opts := dashboard.DefaultOptions()
		opts.GridColumns = cfg.Dashboard.GridColumns
		d, err := dashboard.Build(req, res.Snapshots, opts)
		if err != nil {
			return err
		}

		md := dashboard.Markdown(d, cfg.Dashboard.Title, res.Warnings)
		if plain {
			fmt.Print(md)
			return nil
		}
		return printMarkdown(md)
	},
}

func init() {
	analyzeCmd.Flags().String("period", models.Period1Y.Label(), `analysis period ("1 Year", "2 Years", "3 Years", "5 Years", "Year-to-Date")`)
	analyzeCmd.Flags().String("password", "", "access password (default: auth.password from config)")
	analyzeCmd.Flags().Bool("plain", false, "print raw Markdown instead of rendering it")
}

func newFetcher() *fetcher.Fetcher {
	rec := metrics.New()
	provider := datasource.NewYFinance(datasource.YFinanceOptions{
		BaseURL:   cfg.Upstream.BaseURL,
		CookieURL: cfg.Upstream.CookieURL,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
		Observer:  rec,
	})
	opts := []fetcher.Option{fetcher.WithLogger(logger), fetcher.WithMetrics(rec)}
	if cfg.News.Enabled {
		news := datasource.NewNews(cfg.News.FeedURL, cfg.Upstream.Timeout, cfg.Upstream.UserAgent)
		opts = append(opts, fetcher.WithHeadlines(news, cfg.News.Limit))
	}
	return fetcher.New(provider, fetcher.FixedPacer{Interval: cfg.Fetch.Pacing}, opts...)
}

// printMarkdown renders md for the terminal with glamour.
func printMarkdown(md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  investdash: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Server:        %s\n", cfg.Server.Addr())
		fmt.Printf("    Upstream:      %s\n", cfg.Upstream.BaseURL)
		fmt.Printf("    Pacing:        %s\n", cfg.Fetch.Pacing)
		fmt.Printf("    Headlines:     %t (limit %d)\n", cfg.News.Enabled, cfg.News.Limit)
		if err := cfg.Validate(); err != nil {
			fmt.Printf("    Valid:         ❌ %v\n", err)
		} else {
			fmt.Println("    Valid:         ✅")
		}
		fmt.Println()

		fmt.Println("  Secrets:")
		for _, k := range config.CheckSecrets(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

