package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_Properties(t *testing.T) {
	type TransportConfig struct {
		UserAgent string            `json:"userAgent"`
		Headers   map[string]string `json:"headers,omitempty"`
		Redirects int               `json:"maxRedirects"`
	}

	schema, err := GenerateSchema(TransportConfig{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(schema, &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	assert.Len(t, properties, 3)
	assert.Contains(t, properties, "userAgent")
	assert.Contains(t, properties, "headers")

	required, ok := decoded["required"].([]any)
	require.True(t, ok, "required should be an array")
	assert.Contains(t, required, "userAgent")
	assert.NotContains(t, required, "headers", "omitempty fields are optional")
}

func TestGenerateSchema_TitleAndDescription(t *testing.T) {
	type Empty struct{}

	schema, err := GenerateSchema(Empty{}, WithTitle("portal"), WithDescription("transport settings"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(schema, &decoded))
	assert.Equal(t, "portal", decoded["title"])
	assert.Equal(t, "transport settings", decoded["description"])
}
