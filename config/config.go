package config

import (
	"fmt"
	"strings"
	"time"
)

// Fetch strategies understood by scraper.New.
const (
	FetchStatic   = "static"
	FetchRendered = "rendered"
)

// Output formats understood by the export writers.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatDual = "dual"
)

// Config holds scraper configuration.
type Config struct {
	FetchMode      string // static or rendered
	Timeout        time.Duration
	UserAgent      string
	Headers        map[string]string
	MaxBodySize    int // bytes; 0 reads the whole body
	SettleDuration time.Duration
	Headless       bool
	NoSandbox      bool
	BrowserBin     string
	ExtractionFile string
	OutputFile     string
	OutputFormat   string // csv, json, or dual
	MetricsAddr    string
	ListenAddr     string
	Verbose        bool
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() *Config {
	return &Config{
		FetchMode:      FetchStatic,
		Timeout:        15 * time.Second,
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Headers:        map[string]string{"Accept-Language": "en-US,en;q=0.9"},
		SettleDuration: 5 * time.Second,
		Headless:       true,
		NoSandbox:      false,
		OutputFile:     "output/products.csv",
		OutputFormat:   FormatCSV,
		ListenAddr:     ":8080",
		Verbose:        false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.FetchMode != FetchStatic && c.FetchMode != FetchRendered {
		return fmt.Errorf("fetch mode must be %s or %s", FetchStatic, FetchRendered)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size cannot be negative")
	}
	if c.SettleDuration < 0 {
		return fmt.Errorf("settle duration cannot be negative")
	}
	if c.FetchMode == FetchRendered && c.SettleDuration >= c.Timeout {
		return fmt.Errorf("settle duration (%s) must be shorter than timeout (%s)", c.SettleDuration, c.Timeout)
	}
	for name := range c.Headers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("header name cannot be empty")
		}
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != FormatCSV && c.OutputFormat != FormatJSON && c.OutputFormat != FormatDual {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	return nil
}
