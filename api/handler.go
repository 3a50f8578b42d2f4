package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/gin-gonic/gin"
)

// ScrapeRequest is the body of POST /api/v1/scrape. Extraction replaces
// the server's extraction config for this request only.
type ScrapeRequest struct {
	URL        string                   `json:"url"`
	FetchMode  string                   `json:"fetch_mode,omitempty"`
	Format     string                   `json:"format,omitempty"`
	Extraction *config.ExtractionConfig `json:"extraction,omitempty"`
}

// ScrapeResponse is the JSON envelope returned by the scrape handler.
type ScrapeResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Result  *models.Result `json:"result,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed scrape.
type ErrorDetail struct {
	Category pipeline.Category `json:"category"`
	Detail   string            `json:"detail"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	FetchMode string `json:"fetch_mode"`
}

// Health returns service liveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		FetchMode: s.cfg.FetchMode,
	})
}

// Scrape runs one pipeline for the requested URL. A result with records
// can be streamed as CSV with format=csv.
func (s *Server) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ScrapeResponse{
			Message: "The request body must be a JSON object.",
			Error:   &ErrorDetail{Category: pipeline.CategoryValidation, Detail: err.Error()},
		})
		return
	}

	mode := s.cfg.FetchMode
	if req.FetchMode != "" {
		mode = strings.ToLower(req.FetchMode)
	}
	fetcher, err := s.fetchers(mode)
	if err != nil {
		respondError(c, pipeline.ValidationError{Field: "fetch_mode", Err: err})
		return
	}

	extraction := s.extraction
	if req.Extraction != nil {
		extraction = *req.Extraction
	}

	p := pipeline.NewPipeline(fetcher, nil, s.metrics)
	result, err := p.Run(c.Request.Context(), req.URL, extraction)
	if err != nil {
		respondError(c, err)
		return
	}

	if strings.EqualFold(req.Format, config.FormatCSV) && !result.Empty {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="products.csv"`)
		c.Status(http.StatusOK)
		if err := pipeline.WriteCSV(c.Writer, result.Fields, result.Records); err != nil {
			slog.Error("stream csv", slog.String("url", result.SourceURL), slog.Any("error", err))
		}
		return
	}

	_, message := pipeline.Describe(result, nil)
	c.JSON(http.StatusOK, ScrapeResponse{
		Success: !result.Empty,
		Message: message,
		Result:  result,
	})
}

func respondError(c *gin.Context, err error) {
	category, message := pipeline.Describe(nil, err)
	c.JSON(statusFor(category, err), ScrapeResponse{
		Message: message,
		Error:   &ErrorDetail{Category: category, Detail: err.Error()},
	})
}

// statusFor translates an error category to an HTTP status code.
func statusFor(category pipeline.Category, err error) int {
	switch category {
	case pipeline.CategoryValidation:
		return http.StatusBadRequest
	case pipeline.CategoryConnectivity:
		var conn scraper.ConnectivityError
		if errors.As(err, &conn) && conn.Reason == scraper.ReasonTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case pipeline.CategoryRender:
		return http.StatusBadGateway
	case pipeline.CategoryParse:
		return http.StatusUnprocessableEntity
	case pipeline.CategoryBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
