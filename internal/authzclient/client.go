// Package authzclient owns the authorization client: connection
// parameters, request construction, HTTP transport to the decision
// service, response parsing, and the typed result taxonomy every other
// component consumes.
package authzclient

import (
	"strings"
	"sync"
	"time"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/config"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/deviceid"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/httputil"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/logging"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/resilience"
)

const (
	evaluationPath = "/access/v2/evaluations"
	searchPath     = "/access/v2/search"

	ActionExecute = "execute"
	ActionList    = "list"
)

// Options carries the construction-time overrides §4.3 allows on top of the
// loaded configuration. A zero Options uses the configuration file as-is.
type Options struct {
	ConfigPath string
	Timeout    time.Duration
	Debug      *bool
	VerifyPeer *bool
	VerifyHost *bool
	UserAgent  string
	Logger     *logging.Logger
}

// Client owns configuration values plus the transient last-request and
// last-error fields spec's data model describes. Construct with New and
// release with Close.
type Client struct {
	mu sync.Mutex

	cfg        *config.Config
	token      []byte
	baseURL    string
	httpClient *httpClient
	logger     *logging.Logger
	retryCfg   resilience.Config

	lastRequestID string
	lastError     string
}

// New loads configuration per internal/config's discovery order, applies
// opts as overrides, and constructs a ready-to-use Client. It never issues
// a network request itself.
func New(opts Options) (*Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig builds a Client from an already-loaded configuration,
// useful for tests and for callers that parsed config themselves.
func NewWithConfig(cfg *config.Config, opts Options) (*Client, error) {
	if cfg == nil {
		return nil, errorsx.New(errorsx.ConfigError, "nil configuration")
	}

	applyOverrides(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		dest := logging.DestinationStderr
		level := logging.ParseLevel(cfg.LogLevel)
		if cfg.Debug {
			level = logging.LevelDebug
		}
		logger = logging.New("authzclient", level, dest)
	}

	transportCfg := httputil.ClientConfig{
		Timeout:        time.Duration(cfg.HTTP.Timeout) * time.Second,
		ConnectTimeout: time.Duration(cfg.HTTP.ConnectTimeout) * time.Second,
		VerifyPeer:     cfg.VerifyPeer(),
		VerifyHost:     cfg.VerifyHost(),
	}
	if opts.Timeout > 0 {
		transportCfg.Timeout = opts.Timeout
	}

	c := &Client{
		cfg:        cfg,
		token:      []byte(cfg.APIToken),
		baseURL:    buildBaseURL(cfg),
		httpClient: newHTTPClient(httputil.NewClient(transportCfg)),
		logger:     logger,
		retryCfg:   resilience.FromRetryCount(cfg.RetryCount, cfg.RetryDelayMS),
	}
	return c, nil
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.Debug != nil {
		cfg.Debug = *opts.Debug
	}
	if opts.VerifyPeer != nil {
		cfg.HTTP.SSLVerifyPeer = opts.VerifyPeer
	}
	if opts.VerifyHost != nil {
		cfg.HTTP.SSLVerifyHost = opts.VerifyHost
	}
	if opts.UserAgent != "" {
		cfg.HTTP.UserAgent = opts.UserAgent
	}
}

func buildBaseURL(cfg *config.Config) string {
	origin := httputil.NormalizeBaseURL(cfg.APIURL)
	// A caller-supplied scheme (e.g. a test server's http:// URL) is used
	// verbatim; the wire protocol's https://{tenant}.{api_url} form only
	// applies to a bare origin host suffix.
	if strings.Contains(origin, "://") {
		return origin
	}
	if cfg.Tenant != "" {
		return "https://" + cfg.Tenant + "." + origin
	}
	return "https://" + origin
}

// Valid reports the client invariant: a client with an empty API origin or
// empty token must never issue requests.
func (c *Client) Valid() bool {
	return c.baseURL != "" && len(c.token) > 0
}

// Config returns the client's loaded configuration. Callers must treat it
// as read-only; the client itself never mutates it after construction.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// LastRequestID returns the identifier of the most recently issued
// request, for diagnostics.
func (c *Client) LastRequestID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRequestID
}

// LastError returns the most recent error message recorded by the client.
// It never contains the API token.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *Client) recordError(msg string) {
	c.mu.Lock()
	c.lastError = msg
	c.mu.Unlock()
}

func (c *Client) recordRequestID(id string) {
	c.mu.Lock()
	c.lastRequestID = id
	c.mu.Unlock()
}

func (c *Client) deviceID() string {
	return deviceid.Get()
}

// Close zeroes the token buffer and releases client resources. Calling any
// operation on the client afterward is a programming error and will fail
// the Valid check.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.token {
		c.token[i] = 0
	}
	c.token = nil
	c.baseURL = ""
}
