package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/titanous/json5"
)

// FieldSelector maps a record field to a selector scoped within a container.
// When Attr is set the field takes that attribute's value instead of the
// node text.
type FieldSelector struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Attr     string `json:"attr,omitempty"`
}

// ExtractionConfig describes where product entries live on a page and how
// to read each field. Fields keep their declared order.
type ExtractionConfig struct {
	ContainerSelector string          `json:"container_selector"`
	Fields            []FieldSelector `json:"fields"`
}

// DefaultExtractionConfig returns generic placeholders that need adjusting
// to the structure of the target site.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		ContainerSelector: "div.product",
		Fields: []FieldSelector{
			{Name: "name", Selector: "h2.product-name"},
			{Name: "price", Selector: "span.price"},
			{Name: "rating", Selector: "span.rating"},
			{Name: "category", Selector: ".category"},
			{Name: "brand", Selector: ".brand"},
		},
	}
}

// FieldNames returns the declared field names in order.
func (e ExtractionConfig) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks that the container and every field selector are present,
// unique by name, and compile.
func (e ExtractionConfig) Validate() error {
	if strings.TrimSpace(e.ContainerSelector) == "" {
		return fmt.Errorf("container selector cannot be empty")
	}
	if _, err := cascadia.Compile(e.ContainerSelector); err != nil {
		return fmt.Errorf("container selector %q: %w", e.ContainerSelector, err)
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("at least one field selector is required")
	}

	seen := make(map[string]struct{}, len(e.Fields))
	for i, f := range e.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("field %d: name cannot be empty", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("field %q declared more than once", name)
		}
		seen[name] = struct{}{}

		if strings.TrimSpace(f.Selector) == "" {
			return fmt.Errorf("field %q: selector cannot be empty", name)
		}
		if _, err := cascadia.Compile(f.Selector); err != nil {
			return fmt.Errorf("field %q selector %q: %w", name, f.Selector, err)
		}
	}
	return nil
}

// ParseExtractionConfig decodes a JSON5 document into an ExtractionConfig.
func ParseExtractionConfig(data []byte) (ExtractionConfig, error) {
	var cfg ExtractionConfig
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return ExtractionConfig{}, fmt.Errorf("decode extraction config: %w", err)
	}
	return cfg, nil
}

// LoadExtractionConfig reads an ExtractionConfig from a JSON5 file.
func LoadExtractionConfig(path string) (ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExtractionConfig{}, fmt.Errorf("read extraction config: %w", err)
	}
	return ParseExtractionConfig(data)
}
