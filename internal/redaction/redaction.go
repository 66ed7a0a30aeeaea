// Package redaction scrubs secrets from strings and structured values
// before they reach a log sink or a host-visible error message.
package redaction

import (
	"regexp"
	"strings"
)

// secretPattern pairs a matcher with its replacement template. Patterns
// whose first capture group is the *key* (api_token=..., authorization:
// ...) replace with "${1}: <redaction text>"; the Bearer pattern has no
// key capture, so its whole match is replaced outright to avoid
// reinserting the token it just matched.
type secretPattern struct {
	re          *regexp.Regexp
	replaceTmpl func(redactionText string) string
}

var secretPatterns = []secretPattern{
	{
		re:          regexp.MustCompile(`(?i)(api[_-]?token|apitoken)["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
		replaceTmpl: func(text string) string { return "${1}: " + text },
	},
	{
		re:          regexp.MustCompile(`(?i)(protected[_-]?system[_-]?token)["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
		replaceTmpl: func(text string) string { return "${1}: " + text },
	},
	{
		re:          regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._~+/=-]+`),
		replaceTmpl: func(text string) string { return "Bearer " + text },
	},
	{
		re:          regexp.MustCompile(`(?i)(authorization)["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
		replaceTmpl: func(text string) string { return "${1}: " + text },
	},
}

// Config controls which fields and patterns a Redactor treats as secret.
type Config struct {
	Enabled         bool
	RedactionText   string
	BlockedFields   []string
}

// DefaultConfig matches the one secret this system carries end to end: the
// decision-service bearer token, under either of its config aliases.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RedactionText: "***REDACTED***",
		BlockedFields: []string{
			"api_token",
			"protected_system_token",
			"authorization",
			"token",
		},
	}
}

type Redactor struct {
	cfg Config
}

func NewRedactor(cfg Config) *Redactor {
	if cfg.RedactionText == "" {
		cfg.RedactionText = "***REDACTED***"
	}
	return &Redactor{cfg: cfg}
}

// String scrubs secret-shaped substrings out of a free-form string, such as
// a logged request line or error message.
func (r *Redactor) String(s string) string {
	if !r.cfg.Enabled {
		return s
	}
	out := s
	for _, pattern := range secretPatterns {
		out = pattern.re.ReplaceAllString(out, pattern.replaceTmpl(r.cfg.RedactionText))
	}
	return out
}

// Map recursively scrubs values keyed by a blocked field name, leaving
// audit-relevant fields like principal_id and reason untouched.
func (r *Redactor) Map(m map[string]interface{}) map[string]interface{} {
	if !r.cfg.Enabled {
		return m
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch {
		case r.isSecretField(k):
			out[k] = r.cfg.RedactionText
		case v == nil:
			out[k] = v
		default:
			switch val := v.(type) {
			case string:
				out[k] = r.String(val)
			case map[string]interface{}:
				out[k] = r.Map(val)
			case []interface{}:
				out[k] = r.Slice(val)
			default:
				out[k] = v
			}
		}
	}
	return out
}

func (r *Redactor) Slice(s []interface{}) []interface{} {
	if !r.cfg.Enabled {
		return s
	}
	out := make([]interface{}, len(s))
	for i, v := range s {
		switch val := v.(type) {
		case string:
			out[i] = r.String(val)
		case map[string]interface{}:
			out[i] = r.Map(val)
		default:
			out[i] = val
		}
	}
	return out
}

func (r *Redactor) isSecretField(name string) bool {
	lower := strings.ToLower(name)
	for _, blocked := range r.cfg.BlockedFields {
		if strings.Contains(lower, strings.ToLower(blocked)) {
			return true
		}
	}
	return false
}

var defaultRedactor = NewRedactor(DefaultConfig())

// Text scrubs a string using the package default configuration. Logger call
// sites use this before writing anything derived from config or request
// headers.
func Text(s string) string {
	return defaultRedactor.String(s)
}
