package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/spf13/cobra"
)

const appName = "product-scraper"

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   appName + " [url]",
		Short: "Extract product records from an e-commerce page and export them.",
		Long: `Fetches a catalog page (plain HTTP or a headless browser), extracts one record per
product container using configurable CSS selectors, and writes the records to CSV or JSONL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.FetchMode = strings.ToLower(cfg.FetchMode)
			cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

			logger, level := newLogger(cfg.Verbose)
			slog.SetDefault(logger)
			slog.SetLogLoggerLevel(level.Level())

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.FetchMode, "mode", cfg.FetchMode, "Fetch strategy: static or rendered")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Overall fetch timeout")
	flags.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent with every request")
	flags.StringToStringVar(&cfg.Headers, "header", cfg.Headers, "Extra request headers (name=value)")
	flags.IntVar(&cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "Largest static response body in bytes (0 = no limit)")
	flags.DurationVar(&cfg.SettleDuration, "settle", cfg.SettleDuration, "Wait after page load before capturing rendered markup")
	flags.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run the browser without a window")
	flags.BoolVar(&cfg.NoSandbox, "no-sandbox", cfg.NoSandbox, "Disable the browser sandbox (containers)")
	flags.StringVar(&cfg.BrowserBin, "browser-bin", cfg.BrowserBin, "Browser executable; downloaded when empty")
	flags.StringVarP(&cfg.ExtractionFile, "extraction", "e", cfg.ExtractionFile, "JSON5 file with container and field selectors")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose logging")

	scrape := newScrapeCmd(cfg)
	root.Args = scrape.Args
	root.RunE = scrape.RunE
	root.Flags().AddFlagSet(scrape.Flags())

	root.AddCommand(scrape, newServeCmd(cfg), newValidateCmd(cfg))
	return root
}

func loadExtraction(path string) (config.ExtractionConfig, error) {
	if path == "" {
		return config.DefaultExtractionConfig(), nil
	}
	ext, err := config.LoadExtractionConfig(path)
	if err != nil {
		return config.ExtractionConfig{}, err
	}
	slog.Debug("loaded extraction config",
		slog.String("path", path),
		slog.String("container", ext.ContainerSelector),
		slog.Int("fields", len(ext.Fields)),
	)
	return ext, nil
}
