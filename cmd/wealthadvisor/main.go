// wealthadvisor: AI market insights, wealth strategies and price outlooks
// for Indian equities.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/seenimoa/wealthadvisor/api"
	"github.com/seenimoa/wealthadvisor/internal/advisor"
	"github.com/seenimoa/wealthadvisor/internal/config"
	"github.com/seenimoa/wealthadvisor/internal/llm"
	"github.com/seenimoa/wealthadvisor/internal/marketdata"
	"github.com/seenimoa/wealthadvisor/pkg/models"
	"github.com/seenimoa/wealthadvisor/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// demoSymbol and demoWatchlist drive the bare invocation.
var (
	demoSymbol    = "RELIANCE"
	demoWatchlist = []string{"RELIANCE", "TCS", "HDFCBANK"}
)

func demoProfile() models.Profile {
	return models.Profile{
		Age:           30,
		Income:        decimal.NewFromInt(1500000),
		RiskTolerance: 7,
		Goals:         "Build long-term wealth and retire early",
		TimeHorizon:   25,
	}
}

var rootCmd = &cobra.Command{
	Use:   "wealthadvisor",
	Short: "AI wealth advisor for Indian equities",
	Long: `wealthadvisor combines Yahoo Finance price history for NSE/BSE stocks
with Google Gemini to produce market insights, personalised wealth
strategies and six-month price outlooks.

Run without a sub-command to see all three for a sample investor.`,
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

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = config.NewLogger(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := newAdvisor()
		if err != nil {
			return err
		}
		runDemo(cmd.Context(), cmd.OutOrStdout(), adv)
		return nil
	},
}

// demoAdvisor is the slice of the Advisor the bare invocation uses.
type demoAdvisor interface {
	CreateWealthStrategy(ctx context.Context, p models.Profile) advisor.Result
	GetMarketInsights(ctx context.Context, symbol string) advisor.Result
	GetAIPredictions(ctx context.Context, symbols []string) advisor.Predictions
}

// runDemo prints a strategy for the sample investor, insights for
// demoSymbol and predictions for demoWatchlist, in that order. Failures are
// printed in place and do not stop the remaining sections.
func runDemo(ctx context.Context, out io.Writer, adv demoAdvisor) {
	fmt.Fprintln(out, "Wealth Strategy:")
	printResult(out, adv.CreateWealthStrategy(ctx, demoProfile()))

	fmt.Fprintf(out, "\nMarket Insights (%s):\n", demoSymbol)
	printResult(out, adv.GetMarketInsights(ctx, demoSymbol))

	fmt.Fprintln(out, "\nAI Predictions:")
	fmt.Fprintln(out, adv.GetAIPredictions(ctx, demoWatchlist))
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(strategyCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
}

// newAdvisor wires the Yahoo Finance client, the configured LLM provider and
// optional news feeds into an Advisor.
func newAdvisor() (*advisor.Advisor, error) {
	exchange, err := utils.ParseExchange(cfg.Market.Exchange)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.LLM.Provider, cfg.LLM.GeminiKey, cfg.LLM.Model, cfg.LLM.Timeout())
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			return nil, fmt.Errorf("%w: set %s_LLM_GEMINI_KEY or %s", err, config.EnvPrefix, config.GoogleAPIKeyEnv)
		}
		return nil, fmt.Errorf("LLM setup failed: %w", err)
	}
	gen := llm.NewGenerator(provider, &llm.ChatOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)

	httpClient := &http.Client{Timeout: cfg.Market.Timeout()}
	yf := marketdata.NewYFinance(
		marketdata.WithBaseURL(cfg.Market.BaseURL),
		marketdata.WithHTTPClient(httpClient),
		marketdata.WithLogger(logger),
	)

	opts := []advisor.Option{
		advisor.WithExchange(exchange),
		advisor.WithLogger(logger),
	}
	if cfg.News.Enabled {
		sources := make([]marketdata.NewsSource, 0, len(cfg.News.Feeds))
		for _, f := range cfg.News.Feeds {
			sources = append(sources, marketdata.NewsSource{Name: f.Name, RSSURL: f.URL})
		}
		news := marketdata.NewNews(sources, httpClient, logger)
		opts = append(opts, advisor.WithHeadlines(news, cfg.News.Limit))
	}

	logger.Debug("advisor ready",
		"provider", provider.Name(), "model", provider.Model(),
		"market", yf.Name(), "exchange", string(exchange), "news", cfg.News.Enabled)
	return advisor.New(yf, gen, opts...), nil
}

// printResult writes a result's text, or its error message prefixed with
// "error:".
func printResult(w io.Writer, r advisor.Result) {
	fmt.Fprintln(w, r.String())
}

// emit prints v as indented JSON when asJSON is set, or as text otherwise.
func emit(cmd *cobra.Command, v fmt.Stringer) error {
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(out, v.String())
	return err
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wealthadvisor %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Insights Command ---

var insightsCmd = &cobra.Command{
	Use:   "insights [symbol]",
	Short: "Analyse six months of price history for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := newAdvisor()
		if err != nil {
			return err
		}
		return emit(cmd, adv.GetMarketInsights(cmd.Context(), args[0]))
	},
}

// --- Strategy Command ---

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Create a wealth strategy for an investor profile",
	Long: `Create a wealth strategy for an investor profile.

The profile is a YAML or JSON file with age, income, risk_tolerance (0-10),
goals and time_horizon (years). Without --profile the sample investor is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := demoProfile()
		if path, _ := cmd.Flags().GetString("profile"); path != "" {
			var err error
			if profile, err = advisor.LoadProfile(path); err != nil {
				return err
			}
		}

		adv, err := newAdvisor()
		if err != nil {
			return err
		}
		return emit(cmd, adv.CreateWealthStrategy(cmd.Context(), profile))
	},
}

func init() {
	strategyCmd.Flags().String("profile", "", "investor profile file (YAML or JSON)")
}

// --- Predict Command ---

var predictCmd = &cobra.Command{
	Use:   "predict [symbol...]",
	Short: "Six-month outlook for one or more stocks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := newAdvisor()
		if err != nil {
			return err
		}
		return emit(cmd, adv.GetAIPredictions(cmd.Context(), args))
	},
}

func init() {
	for _, c := range []*cobra.Command{insightsCmd, strategyCmd, predictCmd} {
		c.Flags().Bool("json", false, "print the result as JSON")
	}
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := newAdvisor()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		srv := api.NewServer(adv, cfg.API, api.WithLogger(logger), api.WithVersion(version))
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show market status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		now := utils.NowIST()

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  wealthadvisor System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus())
		fmt.Fprintf(out, "  Time (IST):    %s\n", utils.FormatDateTimeIST(now))
		if name, ok := utils.HolidayName(now); ok {
			fmt.Fprintf(out, "  Holiday:       %s\n", name)
		}
		fmt.Fprintln(out)

		// Config summary
		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    LLM Provider:  %s (model: %s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(out, "    Exchange:      %s\n", cfg.Market.Exchange)
		fmt.Fprintf(out, "    News Context:  %t (limit %d)\n", cfg.News.Enabled, cfg.News.Limit)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintln(out)

		// API keys status
		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		if ping, _ := cmd.Flags().GetBool("ping"); ping {
			fmt.Fprintf(out, "    %-25s %s\n", "Gemini reachable:", pingProvider(cmd.Context()))
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("ping", false, "verify the Gemini key with a live request")
}

func pingProvider(ctx context.Context) string {
	provider, err := llm.NewProvider(cfg.LLM.Provider, cfg.LLM.GeminiKey, cfg.LLM.Model, cfg.LLM.Timeout())
	if err != nil {
		return "❌ " + err.Error()
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := provider.Ping(ctx); err != nil {
		return "❌ " + err.Error()
	}
	return "✅ ok (" + provider.Model() + ")"
}
