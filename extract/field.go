// Package extract reads product records out of a parsed page.
package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
)

// Lookup is the outcome of reading one field: either Found with its text,
// or NotFound.
type Lookup struct {
	text  string
	found bool
}

// NotFound is the Lookup for a field whose node is missing.
var NotFound = Lookup{}

// Found wraps text extracted from a matched node.
func Found(text string) Lookup {
	return Lookup{text: text, found: true}
}

// Text returns the extracted text and whether the field was found.
func (l Lookup) Text() (string, bool) {
	return l.text, l.found
}

// IsFound reports whether the field node was matched.
func (l Lookup) IsFound() bool {
	return l.found
}

// OrSentinel returns the text, or models.NotAvailable when not found.
func (l Lookup) OrSentinel() string {
	if !l.found {
		return models.NotAvailable
	}
	return l.text
}

// FieldSpec is a compiled field selector.
type FieldSpec struct {
	Name     string
	Selector cascadia.Selector
	Attr     string
}

// LookupField returns the normalized text of the first descendant of
// container matched by spec, or the value of spec.Attr on it when set.
// A missing node or attribute yields NotFound.
func LookupField(container *goquery.Selection, spec FieldSpec) Lookup {
	if container == nil || spec.Selector == nil {
		return NotFound
	}

	node := container.FindMatcher(spec.Selector).First()
	if node.Length() == 0 {
		return NotFound
	}

	if spec.Attr != "" {
		value, ok := node.Attr(spec.Attr)
		if !ok {
			return NotFound
		}
		return Found(parser.NormalizeText(value))
	}
	return Found(parser.NormalizeText(node.Text()))
}
