package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-scrape-products/extract"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

var (
	// ErrBusy is returned when Run is called while the pipeline is mid-flight.
	ErrBusy = errors.New("pipeline: run already in progress")

	// ErrNothingToExport is returned when exporting a result without records.
	ErrNothingToExport = errors.New("pipeline: no records to export")
)

// ValidationError indicates a malformed URL or extraction configuration.
// The pipeline never starts fetching when it is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Errorf("invalid %s: %w", e.Field, e.Err).Error()
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// Category groups outcomes that warrant the same guidance to a user.
type Category string

const (
	CategoryOK           Category = "ok"
	CategoryEmpty        Category = "empty"
	CategoryValidation   Category = "validation"
	CategoryConnectivity Category = "connectivity"
	CategoryRender       Category = "render"
	CategoryParse        Category = "parse"
	CategoryBusy         Category = "busy"
	CategoryInternal     Category = "internal"
)

// Describe maps the outcome of Run to a category and a human-readable
// message.
func Describe(result *models.Result, err error) (Category, string) {
	if err == nil {
		if result == nil {
			return CategoryInternal, "The scrape did not produce a result."
		}
		if result.Empty {
			return CategoryEmpty, "No products found. The site may be using advanced blocking or a different structure. Try adjusting the selectors."
		}
		return CategoryOK, fmt.Sprintf("Extracted %d products.", len(result.Records))
	}

	var validation ValidationError
	if errors.As(err, &validation) {
		if validation.Field == "url" {
			return CategoryValidation, "Please enter a valid URL starting with http:// or https://."
		}
		return CategoryValidation, fmt.Sprintf("The extraction configuration is invalid: %v", validation.Err)
	}

	var conn scraper.ConnectivityError
	if errors.As(err, &conn) {
		switch conn.Reason {
		case scraper.ReasonTimeout:
			return CategoryConnectivity, "Cannot reach the site: the request timed out."
		case scraper.ReasonForbidden, scraper.ReasonRateLimited:
			return CategoryConnectivity, fmt.Sprintf("The site refused the request (HTTP %d).", conn.StatusCode)
		case scraper.ReasonNotFound:
			return CategoryConnectivity, "The page does not exist (HTTP 404)."
		case scraper.ReasonTooLarge:
			return CategoryConnectivity, "The page is larger than the configured body size limit."
		case scraper.ReasonStatus:
			return CategoryConnectivity, fmt.Sprintf("The site answered with HTTP %d.", conn.StatusCode)
		default:
			return CategoryConnectivity, "Cannot reach the site. Check the address and your connection."
		}
	}

	var render scraper.RenderError
	if errors.As(err, &render) {
		return CategoryRender, fmt.Sprintf("The browser session failed while rendering the page (%s).", render.Stage)
	}

	var parseErr parser.ParseError
	if errors.As(err, &parseErr) {
		return CategoryParse, "The site responded, but the content is not an HTML page."
	}

	if errors.Is(err, ErrNothingToExport) {
		return CategoryEmpty, "No data to save. Please scrape first."
	}

	if errors.Is(err, ErrBusy) {
		return CategoryBusy, "A scrape is already running. Wait for it to finish."
	}

	var selErr extract.SelectorError
	if errors.As(err, &selErr) {
		return CategoryValidation, fmt.Sprintf("The selector %q is invalid.", selErr.Selector)
	}

	return CategoryInternal, fmt.Sprintf("An unexpected error occurred: %v", err)
}
