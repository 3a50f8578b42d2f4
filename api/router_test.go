package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

const shopHTML = `<html><body>
<div class="product"><h2 class="product-name">Lamp</h2><span class="price">$10</span></div>
<div class="product"><h2 class="product-name">Mug, large</h2></div>
</body></html>`

type stubFetcher struct {
	markup string
	err    error
}

func (s stubFetcher) Name() string { return "stub" }

func (s stubFetcher) Fetch(ctx context.Context, url string) (*models.RawPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.RawPage{URL: url, FinalURL: url, Markup: s.markup, StatusCode: http.StatusOK, Strategy: "stub", FetchedAt: time.Now()}, nil
}

func newTestRouter(t *testing.T, fetcher scraper.Fetcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ext := config.ExtractionConfig{
		ContainerSelector: "div.product",
		Fields: []config.FieldSelector{
			{Name: "name", Selector: "h2.product-name"},
			{Name: "price", Selector: "span.price"},
		},
	}
	factory := func(mode string) (scraper.Fetcher, error) {
		if mode != config.FetchStatic && mode != config.FetchRendered {
			return nil, errors.New("unsupported fetch mode: " + mode)
		}
		return fetcher, nil
	}
	return NewServer(config.DefaultConfig(), ext, scraper.NewMetrics(), factory).Router()
}

func postScrape(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ScrapeResponse {
	t.Helper()
	var resp ScrapeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, stubFetcher{markup: shopHTML})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" || health.FetchMode != config.FetchStatic {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestScrapeJSON(t *testing.T) {
	r := newTestRouter(t, stubFetcher{markup: shopHTML})
	rec := postScrape(t, r, `{"url":"https://shop.test/"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var raw struct {
		Success bool `json:"success"`
		Result  struct {
			Fields  []string            `json:"fields"`
			Records []map[string]string `json:"records"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []map[string]string{
		{"name": "Lamp", "price": "$10"},
		{"name": "Mug, large", "price": "N/A"},
	}
	if !raw.Success {
		t.Fatalf("expected success")
	}
	if diff := cmp.Diff(want, raw.Result.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeCSV(t *testing.T) {
	r := newTestRouter(t, stubFetcher{markup: shopHTML})
	rec := postScrape(t, r, `{"url":"https://shop.test/","format":"csv"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type=%q", ct)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{{"name", "price"}, {"Lamp", "$10"}, {"Mug, large", "N/A"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestScrapeEmpty(t *testing.T) {
	r := newTestRouter(t, stubFetcher{markup: "<html><body><p>blocked</p></body></html>"})
	rec := postScrape(t, r, `{"url":"https://shop.test/"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Success || resp.Result == nil || !resp.Result.Empty {
		t.Fatalf("expected empty result, got %+v", resp)
	}
}

func TestScrapeErrors(t *testing.T) {
	tests := []struct {
		name     string
		fetcher  stubFetcher
		body     string
		status   int
		category pipeline.Category
	}{
		{
			name:     "bad body",
			body:     `not json`,
			status:   http.StatusBadRequest,
			category: pipeline.CategoryValidation,
		},
		{
			name:     "blank url",
			body:     `{"url":"  "}`,
			status:   http.StatusBadRequest,
			category: pipeline.CategoryValidation,
		},
		{
			name:     "unknown fetch mode",
			body:     `{"url":"https://shop.test/","fetch_mode":"teleport"}`,
			status:   http.StatusBadRequest,
			category: pipeline.CategoryValidation,
		},
		{
			name:     "invalid extraction override",
			body:     `{"url":"https://shop.test/","extraction":{"container_selector":"div[","fields":[{"name":"name","selector":"h2"}]}}`,
			status:   http.StatusBadRequest,
			category: pipeline.CategoryValidation,
		},
		{
			name:     "timeout",
			fetcher:  stubFetcher{err: scraper.ConnectivityError{Reason: scraper.ReasonTimeout, Err: context.DeadlineExceeded}},
			body:     `{"url":"https://shop.test/"}`,
			status:   http.StatusGatewayTimeout,
			category: pipeline.CategoryConnectivity,
		},
		{
			name:     "forbidden",
			fetcher:  stubFetcher{err: scraper.ConnectivityError{Reason: scraper.ReasonForbidden, StatusCode: 403, Err: errors.New("Forbidden")}},
			body:     `{"url":"https://shop.test/"}`,
			status:   http.StatusBadGateway,
			category: pipeline.CategoryConnectivity,
		},
		{
			name:     "render",
			fetcher:  stubFetcher{err: scraper.RenderError{Stage: scraper.StageCapture, Err: errors.New("target closed")}},
			body:     `{"url":"https://shop.test/","fetch_mode":"rendered"}`,
			status:   http.StatusBadGateway,
			category: pipeline.CategoryRender,
		},
		{
			name:     "parse",
			fetcher:  stubFetcher{markup: "plain text"},
			body:     `{"url":"https://shop.test/"}`,
			status:   http.StatusUnprocessableEntity,
			category: pipeline.CategoryParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.fetcher)
			rec := postScrape(t, r, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status=%d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			resp := decode(t, rec)
			if resp.Success || resp.Error == nil || resp.Error.Category != tt.category {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, stubFetcher{markup: shopHTML})
	postScrape(t, r, `{"url":"https://shop.test/"}`)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scraper_records_extracted_total 2") {
		t.Fatalf("metrics missing records counter:\n%s", rec.Body.String())
	}
}
