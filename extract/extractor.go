package extract

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSelectorCacheSize = 256

// SelectorError indicates a selector that cannot be compiled.
type SelectorError struct {
	Selector string
	Err      error
}

func (e SelectorError) Error() string {
	return fmt.Errorf("selector %q: %w", e.Selector, e.Err).Error()
}

func (e SelectorError) Unwrap() error {
	return e.Err
}

// EntryError indicates a product entry that could not be read.
type EntryError struct {
	Index int
	Err   error
}

func (e EntryError) Error() string {
	return fmt.Errorf("entry %d: %w", e.Index, e.Err).Error()
}

func (e EntryError) Unwrap() error {
	return e.Err
}

// Extraction is the record set read from one document.
type Extraction struct {
	Records []models.ProductRecord
	Matched int
	Skipped int
}

// Extractor maps field lookups over every product entry of a document.
// It is safe for concurrent use; compiled selectors are shared through a
// bounded cache keyed by selector text.
type Extractor struct {
	selectors *lru.Cache[string, cascadia.Selector]
	lookup    func(*goquery.Selection, FieldSpec) Lookup
}

// NewExtractor builds an Extractor with the default selector cache size.
func NewExtractor() *Extractor {
	cache, err := lru.New[string, cascadia.Selector](defaultSelectorCacheSize)
	if err != nil {
		panic(err)
	}
	return &Extractor{
		selectors: cache,
		lookup:    LookupField,
	}
}

// Compile resolves every selector of cfg, reusing cached compilations.
func (x *Extractor) Compile(cfg config.ExtractionConfig) (cascadia.Selector, []FieldSpec, error) {
	container, err := x.selector(cfg.ContainerSelector)
	if err != nil {
		return nil, nil, err
	}

	fields := make([]FieldSpec, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		sel, err := x.selector(f.Selector)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, FieldSpec{Name: f.Name, Selector: sel, Attr: f.Attr})
	}
	return container, fields, nil
}

// Extract builds one record per container node of doc, in document order.
// No matching container gives an empty Extraction. An entry that fails is
// logged and skipped while the remaining entries are still read.
func (x *Extractor) Extract(doc *goquery.Document, cfg config.ExtractionConfig) (Extraction, error) {
	container, fields, err := x.Compile(cfg)
	if err != nil {
		return Extraction{}, err
	}

	entries := doc.FindMatcher(container)
	result := Extraction{
		Records: make([]models.ProductRecord, 0, entries.Length()),
		Matched: entries.Length(),
	}

	entries.Each(func(i int, entry *goquery.Selection) {
		record, err := x.extractEntry(i, entry, fields)
		if err != nil {
			result.Skipped++
			slog.Warn("skipping product entry",
				slog.Int("index", i),
				slog.Any("error", err),
			)
			return
		}
		result.Records = append(result.Records, record)
	})

	return result, nil
}

func (x *Extractor) extractEntry(index int, entry *goquery.Selection, fields []FieldSpec) (record models.ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = EntryError{Index: index, Err: fmt.Errorf("%v", r)}
		}
	}()

	values := make([]models.Field, 0, len(fields))
	for _, f := range fields {
		values = append(values, models.Field{
			Name:  f.Name,
			Value: x.lookup(entry, f).OrSentinel(),
		})
	}
	return models.NewProductRecord(values), nil
}

func (x *Extractor) selector(text string) (cascadia.Selector, error) {
	if sel, ok := x.selectors.Get(text); ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(text)
	if err != nil {
		return nil, SelectorError{Selector: text, Err: err}
	}
	x.selectors.Add(text, sel)
	return sel, nil
}
