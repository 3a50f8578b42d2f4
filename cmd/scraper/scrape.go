package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newScrapeCmd(cfg *config.Config) *cobra.Command {
	var noTable bool

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape one catalog page and export its product records.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) == 1 {
				target = args[0]
			}
			return runScrape(cmd.Context(), cfg, target, !noTable, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "Output file path")
	cmd.Flags().StringVarP(&cfg.OutputFormat, "format", "f", cfg.OutputFormat, "Output format: csv, json, or dual")
	cmd.Flags().BoolVar(&noTable, "no-table", false, "Do not print the records table")
	return cmd
}

func runScrape(ctx context.Context, cfg *config.Config, target string, showTable bool, out, errOut io.Writer) error {
	ext, err := loadExtraction(cfg.ExtractionFile)
	if err != nil {
		return err
	}

	metrics := scraper.NewMetrics()
	fetcher, err := scraper.New(cfg, metrics)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		metricsServer := startMetricsServer(cfg.MetricsAddr, metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	slog.Info("starting scrape",
		slog.String("url", target),
		slog.String("strategy", fetcher.Name()),
		slog.Int("fields", len(ext.Fields)),
	)

	p := pipeline.NewPipeline(fetcher, nil, metrics)
	result, err := p.Run(ctx, target, ext)
	category, message := pipeline.Describe(result, err)
	if err != nil {
		slog.Error("scrape failed", slog.String("category", string(category)), slog.Any("error", err))
		fmt.Fprintln(errOut, message)
		return fmt.Errorf("scrape %s: %w", target, err)
	}
	if result.Empty {
		fmt.Fprintln(out, message)
		return nil
	}

	if showTable {
		renderRecords(out, result)
	}

	if err := pipeline.Export(result, cfg.OutputFormat, cfg.OutputFile); err != nil {
		return fmt.Errorf("export records: %w", err)
	}

	printSummary(out, result, message, cfg.OutputFile)
	return nil
}

func startMetricsServer(addr string, metrics *scraper.Metrics) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func renderRecords(out io.Writer, result *models.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)

	header := table.Row{"#"}
	for _, name := range result.Fields {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for i, record := range result.Records {
		row := table.Row{i + 1}
		for _, name := range result.Fields {
			row = append(row, record.Value(name))
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func printSummary(out io.Writer, result *models.Result, message, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(out, "\n"+separator)
	fmt.Fprintln(out, message)
	fmt.Fprintf(out, "  Source:        %s\n", result.SourceURL)
	if result.FinalURL != "" && result.FinalURL != result.SourceURL {
		fmt.Fprintf(out, "  Final URL:     %s\n", result.FinalURL)
	}
	fmt.Fprintf(out, "  Strategy:      %s\n", result.Strategy)
	fmt.Fprintf(out, "  Records:       %d\n", len(result.Records))
	fmt.Fprintf(out, "  Skipped:       %d\n", result.Skipped)
	fmt.Fprintf(out, "  Duration:      %v\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Output file:   %s\n", outputFile)
	fmt.Fprintln(out, separator)
}
