package jsonschema

import (
	"github.com/goccy/go-json"
)

// Draft07 is the meta-schema URI of generated documents.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Schema is a minimal JSON Schema representation used for export.
// Only the keywords class metadata can produce are modeled.
type Schema struct {
	// Document
	Schema      string             `json:"$schema,omitempty"`
	ID          string             `json:"$id,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Title       string             `json:"title,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// Core
	Type string `json:"type,omitempty"`
	Enum []any  `json:"enum,omitempty"`

	// Object
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Composition
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`
}

// RefTo returns the in-document reference to a definition.
func RefTo(name string) string { return "#/definitions/" + name }

// Object returns an empty object schema.
func Object() *Schema {
	return &Schema{Type: "object", Properties: map[string]*Schema{}}
}

// Marshal renders s with two-space indentation. Map keys come out sorted.
func Marshal(s *Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
