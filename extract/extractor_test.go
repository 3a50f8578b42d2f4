package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/google/go-cmp/cmp"
)

const catalogPage = `<html><body><main>
<div class="product">
  <h2 class="product-name"> Desk Lamp </h2>
  <span class="price">$19.99</span>
  <span class="rating" data-score="4.5">4.5 out of 5</span>
  <span class="category">Lighting</span>
  <span class="brand">Lumen</span>
</div>
<div class="product">
  <h2 class="product-name">Office Chair</h2>
  <span class="rating" data-score="3.9">3.9 out of 5</span>
  <span class="category">Furniture</span>
</div>
<div class="product">
  <h2 class="product-name">Monitor
     Arm</h2>
  <span class="price">$49.00</span>
  <span class="rating">4.1 out of 5</span>
  <span class="category">Accessories</span>
  <span class="brand">Ergo, "Inc"</span>
</div>
</main></body></html>`

func mustDocument(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func records(rows ...[]models.Field) []models.ProductRecord {
	out := make([]models.ProductRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.NewProductRecord(row))
	}
	return out
}

func fieldsOf(records []models.ProductRecord) [][]models.Field {
	out := make([][]models.Field, len(records))
	for i, r := range records {
		out[i] = r.Fields()
	}
	return out
}

func TestExtractCatalog(t *testing.T) {
	doc := mustDocument(t, catalogPage)

	got, err := NewExtractor().Extract(doc, config.DefaultExtractionConfig())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Matched != 3 || got.Skipped != 0 {
		t.Fatalf("matched=%d skipped=%d, want 3/0", got.Matched, got.Skipped)
	}

	want := records(
		[]models.Field{
			{Name: "name", Value: "Desk Lamp"},
			{Name: "price", Value: "$19.99"},
			{Name: "rating", Value: "4.5 out of 5"},
			{Name: "category", Value: "Lighting"},
			{Name: "brand", Value: "Lumen"},
		},
		[]models.Field{
			{Name: "name", Value: "Office Chair"},
			{Name: "price", Value: models.NotAvailable},
			{Name: "rating", Value: "3.9 out of 5"},
			{Name: "category", Value: "Furniture"},
			{Name: "brand", Value: models.NotAvailable},
		},
		[]models.Field{
			{Name: "name", Value: "Monitor Arm"},
			{Name: "price", Value: "$49.00"},
			{Name: "rating", Value: "4.1 out of 5"},
			{Name: "category", Value: "Accessories"},
			{Name: "brand", Value: `Ergo, "Inc"`},
		},
	)
	if diff := cmp.Diff(fieldsOf(want), fieldsOf(got.Records)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractEveryRecordHasDeclaredFields(t *testing.T) {
	doc := mustDocument(t, catalogPage)

	for k := 1; k <= 5; k++ {
		cfg := config.DefaultExtractionConfig()
		cfg.Fields = cfg.Fields[:k]

		got, err := NewExtractor().Extract(doc, cfg)
		if err != nil {
			t.Fatalf("k=%d extract: %v", k, err)
		}
		for i, record := range got.Records {
			if record.Len() != k {
				t.Fatalf("k=%d record %d has %d fields", k, i, record.Len())
			}
			if diff := cmp.Diff(cfg.FieldNames(), record.Names()); diff != "" {
				t.Fatalf("k=%d record %d names (-want +got):\n%s", k, i, diff)
			}
			for _, v := range record.Values() {
				if v == "" {
					t.Fatalf("k=%d record %d has empty value", k, i)
				}
			}
		}
	}
}

func TestExtractNoContainers(t *testing.T) {
	doc := mustDocument(t, `<html><body><p>Out of stock</p></body></html>`)

	got, err := NewExtractor().Extract(doc, config.DefaultExtractionConfig())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got.Records) != 0 || got.Matched != 0 {
		t.Fatalf("records=%d matched=%d, want none", len(got.Records), got.Matched)
	}
}

func TestExtractPreservesDocumentOrder(t *testing.T) {
	var builder strings.Builder
	builder.WriteString("<ul>")
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&builder, `<li class="item"><b>Item %02d</b></li>`, i)
	}
	builder.WriteString("</ul>")

	cfg := config.ExtractionConfig{
		ContainerSelector: "li.item",
		Fields:            []config.FieldSelector{{Name: "name", Selector: "b"}},
	}
	got, err := NewExtractor().Extract(mustDocument(t, builder.String()), cfg)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for i, record := range got.Records {
		want := fmt.Sprintf("Item %02d", i+1)
		if v := record.Value("name"); v != want {
			t.Fatalf("record %d name=%q, want %q", i, v, want)
		}
	}
}

func TestExtractAttributeField(t *testing.T) {
	cfg := config.ExtractionConfig{
		ContainerSelector: "div.product",
		Fields: []config.FieldSelector{
			{Name: "name", Selector: "h2.product-name"},
			{Name: "rating", Selector: "span.rating", Attr: "data-score"},
		},
	}

	got, err := NewExtractor().Extract(mustDocument(t, catalogPage), cfg)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	ratings := []string{}
	for _, record := range got.Records {
		ratings = append(ratings, record.Value("rating"))
	}
	if diff := cmp.Diff([]string{"4.5", "3.9", models.NotAvailable}, ratings); diff != "" {
		t.Fatalf("ratings (-want +got):\n%s", diff)
	}
}

func TestExtractSkipsFailingEntry(t *testing.T) {
	x := NewExtractor()
	x.lookup = func(entry *goquery.Selection, spec FieldSpec) Lookup {
		if strings.Contains(entry.Text(), "Office Chair") {
			panic("selector engine failure")
		}
		return LookupField(entry, spec)
	}

	got, err := x.Extract(mustDocument(t, catalogPage), config.DefaultExtractionConfig())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Matched != 3 || got.Skipped != 1 || len(got.Records) != 2 {
		t.Fatalf("matched=%d skipped=%d records=%d, want 3/1/2", got.Matched, got.Skipped, len(got.Records))
	}
	if got.Records[0].Value("name") != "Desk Lamp" || got.Records[1].Value("name") != "Monitor Arm" {
		t.Fatalf("unexpected survivors: %v", fieldsOf(got.Records))
	}
}

func TestExtractInvalidSelector(t *testing.T) {
	cfg := config.DefaultExtractionConfig()
	cfg.Fields[0].Selector = "h2[[["

	_, err := NewExtractor().Extract(mustDocument(t, catalogPage), cfg)
	var selErr SelectorError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected SelectorError, got %v", err)
	}
	if selErr.Selector != "h2[[[" {
		t.Fatalf("selector=%q", selErr.Selector)
	}
}

func TestCompileReusesCachedSelectors(t *testing.T) {
	x := NewExtractor()
	cfg := config.DefaultExtractionConfig()

	if _, _, err := x.Compile(cfg); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got, want := x.selectors.Len(), 1+len(cfg.Fields); got != want {
		t.Fatalf("cached selectors=%d, want %d", got, want)
	}
	if _, _, err := x.Compile(cfg); err != nil {
		t.Fatalf("compile again: %v", err)
	}
	if got, want := x.selectors.Len(), 1+len(cfg.Fields); got != want {
		t.Fatalf("cached selectors=%d after reuse, want %d", got, want)
	}
}
