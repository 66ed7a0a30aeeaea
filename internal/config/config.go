// Package config discovers, parses, and validates the JSON configuration
// document shared by the authorization client and both host adapters.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
)

const (
	DefaultPath = "/etc/sgnl/config.json"
	envPathVar  = "SGNL_CONFIG_PATH"

	CommandAttributeID          = "id"
	CommandAttributeName        = "name"
	CommandAttributeDisplayName = "displayName"
)

// HTTP holds the nested http object from the config document.
type HTTP struct {
	Timeout        int    `json:"timeout"`
	ConnectTimeout int    `json:"connect_timeout"`
	SSLVerifyPeer  *bool  `json:"ssl_verify_peer"`
	SSLVerifyHost  *bool  `json:"ssl_verify_host"`
	UserAgent      string `json:"user_agent"`
}

// Sudo holds the nested sudo object from the config document.
type Sudo struct {
	AccessMsg        *bool  `json:"access_msg"`
	CommandAttribute string `json:"command_attribute"`
	BatchEvaluation  *bool  `json:"batch_evaluation"`
}

// Config is the fully parsed, defaulted, and validated configuration
// document.
type Config struct {
	APIURL   string `json:"api_url"`
	APIToken string `json:"api_token"`
	Tenant   string `json:"tenant"`
	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`

	// TimeoutSeconds records the top-level timeout_seconds document value
	// for fidelity; the effective request timeout is always HTTP.Timeout,
	// which Parse folds this into when http.timeout itself is absent.
	TimeoutSeconds int `json:"timeout_seconds"`

	// RetryCount and RetryDelayMS are accepted for forward compatibility
	// with the wire contract's exposed knobs (see design notes on retry
	// semantics); zero disables retry.
	RetryCount   int `json:"retry_count"`
	RetryDelayMS int `json:"retry_delay_ms"`

	HTTP HTTP `json:"http"`
	Sudo Sudo `json:"sudo"`
}

// rawDocument mirrors the JSON shape used to read protected_system_token
// and raw boolean-as-string fields without polluting Config's own tags.
type rawDocument struct {
	APIURL               string          `json:"api_url"`
	APIToken             string          `json:"api_token"`
	ProtectedSystemToken string          `json:"protected_system_token"`
	Tenant               string          `json:"tenant"`
	Debug                json.RawMessage `json:"debug"`
	TimeoutSeconds       *int            `json:"timeout_seconds"`
	LogLevel             string          `json:"log_level"`
	RetryCount           int             `json:"retry_count"`
	RetryDelayMS         int             `json:"retry_delay_ms"`
	HTTP                 rawHTTP         `json:"http"`
	Sudo                 rawSudo         `json:"sudo"`
}

// Timeout and ConnectTimeout are *int, not int, so an explicit 0 in the
// document (invalid, per Validate's lower bound of 1) is distinguishable from
// the field being absent (defaulted by New()); a plain int would collide
// the two and let an explicit 0 silently fall back to the valid default.
type rawHTTP struct {
	Timeout        *int            `json:"timeout"`
	ConnectTimeout *int            `json:"connect_timeout"`
	SSLVerifyPeer  json.RawMessage `json:"ssl_verify_peer"`
	SSLVerifyHost  json.RawMessage `json:"ssl_verify_host"`
	UserAgent      string          `json:"user_agent"`
}

type rawSudo struct {
	AccessMsg        json.RawMessage `json:"access_msg"`
	CommandAttribute string          `json:"command_attribute"`
	BatchEvaluation  json.RawMessage `json:"batch_evaluation"`
}

// New returns a Config populated with the documented defaults.
func New() *Config {
	trueVal := true
	return &Config{
		TimeoutSeconds: 10,
		LogLevel:       "info",
		HTTP: HTTP{
			Timeout:        10,
			ConnectTimeout: 3,
			SSLVerifyPeer:  &trueVal,
			SSLVerifyHost:  &trueVal,
			UserAgent:      "SGNL-Client/1.0",
		},
		Sudo: Sudo{
			AccessMsg:        &trueVal,
			CommandAttribute: CommandAttributeID,
		},
	}
}

// Load discovers the configuration path (explicit argument, then
// SGNL_CONFIG_PATH, then DefaultPath), reads, parses, defaults, and
// validates it.
func Load(explicitPath string) (*Config, error) {
	_ = godotenv.Load()

	path := ResolvePath(explicitPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorsx.New(errorsx.ConfigError, "configuration file not found").WithDetails("path", path)
		}
		return nil, errorsx.Wrap(errorsx.ConfigError, "failed to read configuration file", err).WithDetails("path", path)
	}
	return Parse(data)
}

// ResolvePath applies the discovery order without touching the filesystem.
func ResolvePath(explicitPath string) string {
	if strings.TrimSpace(explicitPath) != "" {
		return explicitPath
	}
	if envPath := strings.TrimSpace(os.Getenv(envPathVar)); envPath != "" {
		return envPath
	}
	return DefaultPath
}

// Parse decodes a JSON configuration document, applies defaults, overlays
// recognized keys, and validates the result.
func Parse(data []byte) (*Config, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errorsx.Wrap(errorsx.ConfigError, "malformed configuration JSON", err)
	}

	cfg := New()

	if raw.APIURL != "" {
		cfg.APIURL = raw.APIURL
	}
	cfg.APIToken = firstNonEmpty(raw.APIToken, raw.ProtectedSystemToken)
	if raw.Tenant != "" {
		cfg.Tenant = raw.Tenant
	}
	if debug, ok := parseBool(raw.Debug); ok {
		cfg.Debug = debug
	}
	if raw.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *raw.TimeoutSeconds
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.RetryCount != 0 {
		cfg.RetryCount = raw.RetryCount
	}
	if raw.RetryDelayMS != 0 {
		cfg.RetryDelayMS = raw.RetryDelayMS
	}

	if raw.HTTP.Timeout != nil {
		cfg.HTTP.Timeout = *raw.HTTP.Timeout
	} else if raw.TimeoutSeconds != nil {
		// timeout_seconds is the top-level alias for http.timeout; an
		// explicit http.timeout always wins.
		cfg.HTTP.Timeout = *raw.TimeoutSeconds
	}
	if raw.HTTP.ConnectTimeout != nil {
		cfg.HTTP.ConnectTimeout = *raw.HTTP.ConnectTimeout
	}
	if v, ok := parseBool(raw.HTTP.SSLVerifyPeer); ok {
		cfg.HTTP.SSLVerifyPeer = &v
	}
	if v, ok := parseBool(raw.HTTP.SSLVerifyHost); ok {
		cfg.HTTP.SSLVerifyHost = &v
	}
	if raw.HTTP.UserAgent != "" {
		cfg.HTTP.UserAgent = raw.HTTP.UserAgent
	}

	if v, ok := parseBool(raw.Sudo.AccessMsg); ok {
		cfg.Sudo.AccessMsg = &v
	}
	if raw.Sudo.CommandAttribute != "" {
		cfg.Sudo.CommandAttribute = raw.Sudo.CommandAttribute
	}
	if v, ok := parseBool(raw.Sudo.BatchEvaluation); ok {
		cfg.Sudo.BatchEvaluation = &v
	} else {
		trueVal := true
		cfg.Sudo.BatchEvaluation = &trueVal
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces required fields and bounds; it never mutates cfg.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errorsx.MissingField("api_url")
	}
	if strings.TrimSpace(c.APIToken) == "" {
		return errorsx.MissingField("api_token")
	}
	if c.HTTP.Timeout < 1 || c.HTTP.Timeout > 300 {
		return errorsx.OutOfRange("http.timeout", 1, 300)
	}
	if c.HTTP.ConnectTimeout < 1 || c.HTTP.ConnectTimeout > 60 {
		return errorsx.OutOfRange("http.connect_timeout", 1, 60)
	}
	switch c.Sudo.CommandAttribute {
	case CommandAttributeID, CommandAttributeName, CommandAttributeDisplayName:
	default:
		return errorsx.InvalidField("sudo.command_attribute", "must be one of id, name, displayName")
	}
	return nil
}

// BatchEvaluationEnabled reports the effective batch_evaluation setting.
// Default true: a single multi-query HTTP call per invocation, matching
// the sudo adapter's documented AND-of-decisions batching. False falls
// back to one HTTP call per query.
func (c *Config) BatchEvaluationEnabled() bool {
	if c.Sudo.BatchEvaluation == nil {
		return true
	}
	return *c.Sudo.BatchEvaluation
}

// AccessMsgEnabled reports the effective access_msg setting.
func (c *Config) AccessMsgEnabled() bool {
	if c.Sudo.AccessMsg == nil {
		return true
	}
	return *c.Sudo.AccessMsg
}

// VerifyPeer reports the effective ssl_verify_peer setting.
func (c *Config) VerifyPeer() bool {
	if c.HTTP.SSLVerifyPeer == nil {
		return true
	}
	return *c.HTTP.SSLVerifyPeer
}

// VerifyHost reports the effective ssl_verify_host setting.
func (c *Config) VerifyHost() bool {
	if c.HTTP.SSLVerifyHost == nil {
		return true
	}
	return *c.HTTP.SSLVerifyHost
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parseBool accepts a JSON literal bool or the strings "true"/"1" per
// spec's relaxed boolean-field parsing, returning ok=false when raw is
// empty/null so callers can distinguish "absent" from "explicitly false".
func parseBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}
