package extract

import (
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/aluiziolira/go-scrape-products/models"
)

func TestLookupField(t *testing.T) {
	doc := mustDocument(t, `<div class="product">
		<span class="price"> $5 </span>
		<span class="price">$6</span>
		<span class="stars" data-rating="4"></span>
		<span class="blank">   </span>
	</div>`)
	entry := doc.Find("div.product")

	tests := []struct {
		name      string
		selector  string
		attr      string
		wantText  string
		wantFound bool
	}{
		{name: "first match wins", selector: "span.price", wantText: "$5", wantFound: true},
		{name: "missing node", selector: "span.brand", wantFound: false},
		{name: "attribute", selector: "span.stars", attr: "data-rating", wantText: "4", wantFound: true},
		{name: "missing attribute", selector: "span.stars", attr: "data-count", wantFound: false},
		{name: "empty text", selector: "span.blank", wantText: "", wantFound: true},
		{name: "container itself is not a descendant", selector: "div.product", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := FieldSpec{Name: "f", Selector: cascadia.MustCompile(tt.selector), Attr: tt.attr}
			text, found := LookupField(entry, spec).Text()
			if found != tt.wantFound || text != tt.wantText {
				t.Fatalf("LookupField(%q) = (%q, %v), want (%q, %v)", tt.selector, text, found, tt.wantText, tt.wantFound)
			}
		})
	}
}

func TestLookupFieldNilInputs(t *testing.T) {
	if LookupField(nil, FieldSpec{Selector: cascadia.MustCompile("b")}).IsFound() {
		t.Fatalf("nil container should not be found")
	}
	doc := mustDocument(t, "<b>x</b>")
	if LookupField(doc.Selection, FieldSpec{}).IsFound() {
		t.Fatalf("nil selector should not be found")
	}
}

func TestLookupOrSentinel(t *testing.T) {
	if got := NotFound.OrSentinel(); got != models.NotAvailable {
		t.Fatalf("NotFound.OrSentinel()=%q", got)
	}
	if got := Found("").OrSentinel(); got != "" {
		t.Fatalf("Found(\"\").OrSentinel()=%q", got)
	}
	if got := Found("Lumen").OrSentinel(); got != "Lumen" {
		t.Fatalf("Found.OrSentinel()=%q", got)
	}
}
