// Package log provides structured logging (slog) for the portal SDK with
// masking of credentials and session cookies.
package log

import (
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Mask replaces the value of every redacted attribute.
const Mask = "***"

// defaultRedactedKeys are matched case-insensitively against attribute keys.
var defaultRedactedKeys = []string{"password", "passwd", "pass", "secret", "token", "cookie", "cookies", "sid", "session_id", "jsessionid"}

// HandlerOption configures the handler built by NewHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	redacted  map[string]struct{}
	level     slog.Leveler
	addSource bool
	json      bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	cfg := handlerConfig{
		level:    slog.LevelInfo,
		redacted: make(map[string]struct{}, len(defaultRedactedKeys)),
	}
	for _, k := range defaultRedactedKeys {
		cfg.redacted[k] = struct{}{}
	}
	return cfg
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithJSON switches the output from text to JSON lines.
func WithJSON(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.json = enabled
	}
}

// WithRedactedKeys adds attribute keys whose values are masked.
func WithRedactedKeys(keys ...string) HandlerOption {
	return func(c *handlerConfig) {
		for _, k := range keys {
			c.redacted[strings.ToLower(k)] = struct{}{}
		}
	}
}

// NewHandler creates a slog handler writing to w that masks redacted keys,
// including keys nested in groups.
func NewHandler(w io.Writer, opts ...HandlerOption) slog.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if _, ok := cfg.redacted[strings.ToLower(a.Key)]; ok && a.Value.Kind() != slog.KindGroup {
				return slog.String(a.Key, Mask)
			}
			return a
		},
	}
	if cfg.json {
		return slog.NewJSONHandler(w, hopts)
	}
	return slog.NewTextHandler(w, hopts)
}

// NewLogger creates a logger on top of NewHandler.
func NewLogger(w io.Writer, opts ...HandlerOption) *slog.Logger {
	return slog.New(NewHandler(w, opts...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Fields turns a string map into a group attribute with keys in sorted order,
// so each entry passes through redaction individually.
func Fields(key string, m map[string]string) slog.Attr {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, m[k]))
	}
	return slog.Group(key, attrs...)
}
