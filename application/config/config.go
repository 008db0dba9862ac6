// Package config loads and validates transport settings for portal sessions.
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/portal-sdk/portal-sdk-go/application/schema"
	"github.com/portal-sdk/portal-sdk-go/application/validation"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
)

const (
	// DefaultUserAgent identifies the client to the portal.
	DefaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:97.0) Gecko/20100101 Firefox/97.0"

	// DefaultMaxRedirects bounds the redirect chain of one exchange.
	DefaultMaxRedirects = 20

	// DefaultMaxBodySize bounds the decoded response body (10MB).
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultTimeout bounds one exchange.
	DefaultTimeout = 30 * time.Second
)

// DefaultHeaders returns the baseline content-negotiation headers.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Encoding": "gzip, deflate, br",
		"Accept-Language": "es-MX,es;q=0.8,en-US;q=0.5,en;q=0.3",
	}
}

// Config holds the transport settings shared by every connection a factory
// creates.
type Config struct {
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// UserAgent is sent as the User-Agent header.
	UserAgent string `yaml:"userAgent" json:"userAgent" validate:"required"`

	// Timeout bounds an exchange when the caller gives none.
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`

	// MaxRedirects bounds the redirect chain. Zero disables redirects.
	MaxRedirects int `yaml:"maxRedirects" json:"maxRedirects" validate:"gte=0,lte=100"`

	// MaxBodySize truncates larger bodies.
	MaxBodySize int64 `yaml:"maxBodySize" json:"maxBodySize" validate:"gt=0"`

	// InsecureSkipVerify disables TLS certificate checks. Captive portals
	// often serve self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify,omitempty" json:"insecureSkipVerify,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserAgent:    DefaultUserAgent,
		Headers:      DefaultHeaders(),
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirects,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// Load reads and validates a YAML config file. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// overrideKeys lists the keys Apply accepts.
var overrideKeys = []string{"insecureSkipVerify", "maxBodySize", "maxRedirects", "timeoutMs", "userAgent"}

// Apply copies o onto the config and revalidates it. Keys outside
// overrideKeys, and values of the wrong type, are rejected with a
// *errors.ValidationError before anything is changed.
func (c *Config) Apply(o Overrides) error {
	next := *c
	for _, key := range slices.Sorted(maps.Keys(o)) {
		ok := true
		switch key {
		case "userAgent":
			ua, err := MustGetString(o, key)
			if err != nil {
				return err
			}
			next.UserAgent = ua
		case "timeoutMs":
			var ms int
			if ms, ok = GetInt(o, key); ok {
				next.Timeout = time.Duration(ms) * time.Millisecond
			}
		case "maxRedirects":
			next.MaxRedirects, ok = GetInt(o, key)
		case "maxBodySize":
			var size int
			if size, ok = GetInt(o, key); ok {
				next.MaxBodySize = int64(size)
			}
		case "insecureSkipVerify":
			next.InsecureSkipVerify, ok = GetBool(o, key)
		default:
			return &errors.ValidationError{
				Field: key,
				Err:   fmt.Errorf("unknown config key, expected one of %s", strings.Join(overrideKeys, ", ")),
			}
		}
		if !ok {
			return &errors.ValidationError{
				Field: key,
				Err:   fmt.Errorf("unexpected value %v (%T)", o[key], o[key]),
			}
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	return schema.GenerateSchema(Config{})
}
