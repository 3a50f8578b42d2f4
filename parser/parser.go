// Package parser turns fetched markup into a navigable document.
package parser

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/models"
	"golang.org/x/net/html"
)

// ErrNoMarkup indicates content without a single element tag.
var ErrNoMarkup = errors.New("content contains no markup")

// ParseError indicates fetched content that could not be parsed as HTML.
type ParseError struct {
	URL string
	Err error
}

func (e ParseError) Error() string {
	return fmt.Errorf("parse %s: %w", e.URL, e.Err).Error()
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// Parse builds a document from page. Blank content and content that holds
// no element tags are reported as ParseError.
func Parse(page *models.RawPage) (*goquery.Document, error) {
	if page == nil {
		return nil, ParseError{Err: errors.New("page is nil")}
	}
	if strings.TrimSpace(page.Markup) == "" {
		return nil, ParseError{URL: page.URL, Err: errors.New("content is empty")}
	}

	hasMarkup, err := containsElement(page.Markup)
	if err != nil {
		return nil, ParseError{URL: page.URL, Err: err}
	}
	if !hasMarkup {
		return nil, ParseError{URL: page.URL, Err: ErrNoMarkup}
	}

	root, err := html.Parse(strings.NewReader(page.Markup))
	if err != nil {
		return nil, ParseError{URL: page.URL, Err: err}
	}

	doc := goquery.NewDocumentFromNode(root)
	base := page.FinalURL
	if base == "" {
		base = page.URL
	}
	if u, err := url.Parse(base); err == nil {
		doc.Url = u
	}
	return doc, nil
}

// containsElement reports whether the tokenizer sees at least one start or
// self-closing tag.
func containsElement(markup string) (bool, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return false, err
			}
			return false, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			return true, nil
		}
	}
}

// NormalizeText trims text and collapses runs of whitespace to one space.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
