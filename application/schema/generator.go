// Package schema provides JSON schema generation for SDK configuration types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Option customises a generated schema.
type Option func(*jsonschema.Schema)

// WithTitle sets the schema title.
func WithTitle(title string) Option {
	return func(s *jsonschema.Schema) {
		s.Title = title
	}
}

// WithDescription sets the schema description.
func WithDescription(desc string) Option {
	return func(s *jsonschema.Schema) {
		s.Description = desc
	}
}

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Struct definitions are expanded inline.
func GenerateSchema(v any, opts ...Option) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(v)
	for _, opt := range opts {
		opt(s)
	}

	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}
