package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvBool parses key as a boolean.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvDuration parses key as a duration such as "10s" or "1m30s".
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// ApplyEnv overrides c with any SCRAPER_* variables present in the environment.
func (c *Config) ApplyEnv() error {
	if value, ok := EnvString("SCRAPER_FETCH_MODE"); ok {
		c.FetchMode = strings.ToLower(value)
	}
	if value, ok, err := EnvDuration("SCRAPER_TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.Timeout = value
	}
	if value, ok := EnvString("SCRAPER_USER_AGENT"); ok {
		c.UserAgent = value
	}
	if value, ok, err := EnvInt("SCRAPER_MAX_BODY_SIZE"); err != nil {
		return err
	} else if ok {
		c.MaxBodySize = value
	}
	if value, ok, err := EnvDuration("SCRAPER_SETTLE"); err != nil {
		return err
	} else if ok {
		c.SettleDuration = value
	}
	if value, ok, err := EnvBool("SCRAPER_HEADLESS"); err != nil {
		return err
	} else if ok {
		c.Headless = value
	}
	if value, ok, err := EnvBool("SCRAPER_NO_SANDBOX"); err != nil {
		return err
	} else if ok {
		c.NoSandbox = value
	}
	if value, ok := EnvString("SCRAPER_BROWSER_BIN"); ok {
		c.BrowserBin = value
	}
	if value, ok := EnvString("SCRAPER_EXTRACTION_FILE"); ok {
		c.ExtractionFile = value
	}
	if value, ok := EnvString("SCRAPER_OUTPUT"); ok {
		c.OutputFile = value
	}
	if value, ok := EnvString("SCRAPER_FORMAT"); ok {
		c.OutputFormat = strings.ToLower(value)
	}
	if value, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}
	if value, ok := EnvString("SCRAPER_LISTEN_ADDR"); ok {
		c.ListenAddr = value
	}
	return nil
}
