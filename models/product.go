// Package models defines data structures for the scraper.
package models

import (
	"bytes"
	"encoding/json"
)

// NotAvailable is the value recorded for a field whose node was not found.
const NotAvailable = "N/A"

// Field is a single named value of a product record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductRecord holds the fields extracted from one product entry in
// declaration order. It is immutable once built.
type ProductRecord struct {
	fields []Field
}

// NewProductRecord builds a record from fields, keeping their order.
func NewProductRecord(fields []Field) ProductRecord {
	out := make([]Field, len(fields))
	copy(out, fields)
	return ProductRecord{fields: out}
}

// Len returns the number of fields in the record.
func (r ProductRecord) Len() int {
	return len(r.fields)
}

// Get returns the value stored under name.
func (r ProductRecord) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value stored under name or NotAvailable.
func (r ProductRecord) Value(name string) string {
	if v, ok := r.Get(name); ok {
		return v
	}
	return NotAvailable
}

// Fields returns a copy of the record's fields.
func (r ProductRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order.
func (r ProductRecord) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Values returns the field values in order.
func (r ProductRecord) Values() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Value
	}
	return out
}

// MarshalJSON encodes the record as an object whose keys keep field order.
func (r ProductRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
