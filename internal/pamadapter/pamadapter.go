// Package pamadapter implements the PAM-style account-management hook: a
// single access check fired once per login session, mapped onto the host
// framework's Success/PermDenied/AuthInfoUnavailable codes.
package pamadapter

import (
	"context"
	"log/syslog"
	"sync"
	"time"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/authzclient"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/logging"
)

// Result mirrors the PAM framework's three-way account hook outcome.
type Result int

const (
	Success Result = iota
	PermDenied
	AuthInfoUnavailable
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case PermDenied:
		return "perm_denied"
	default:
		return "auth_info_unavailable"
	}
}

// Session carries the host session fields the hook reads: PAM_USER,
// PAM_SERVICE, and the optional PAM_RHOST.
type Session struct {
	User    string
	Service string
	RHost   string
}

var (
	mu         sync.Mutex
	client     *authzclient.Client
	clientInit bool
	logger     = logging.New("pamadapter", logging.LevelInfo, logging.DestinationSyslog)
)

// AccountManagement is the integration point: the host calls this once per
// session. It lazily initializes the process-wide client, resolves the
// principal/service from session, and maps the access decision onto the
// PAM result taxonomy.
func AccountManagement(ctx context.Context, session Session) (Result, string) {
	if session.User == "" || session.Service == "" {
		return AuthInfoUnavailable, "missing PAM_USER or PAM_SERVICE"
	}

	c, err := getClient()
	if err != nil {
		logDiagnostic(ctx, "client initialization failed", err)
		return AuthInfoUnavailable, "policy client unavailable"
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout(c))
	defer cancel()

	kind := c.CheckAccess(reqCtx, session.User, session.Service, "")
	switch kind {
	case errorsx.Allowed:
		logDiagnostic(ctx, "access granted", nil)
		return Success, ""
	case errorsx.Denied:
		logDiagnostic(ctx, "access denied", nil)
		return PermDenied, "access denied by SGNL policy"
	default:
		logDiagnostic(ctx, "policy check failed", nil)
		return AuthInfoUnavailable, "policy error"
	}
}

// SetCredential and Authenticate are PAM's auxiliary hooks. They are not
// the integration point and always return Success without contacting the
// decision service.
func SetCredential(ctx context.Context, session Session) Result {
	return Success
}

func Authenticate(ctx context.Context, session Session) Result {
	return Success
}

// DestroyClient tears down the process-wide client at module unload.
func DestroyClient() {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		client.Close()
		client = nil
	}
	clientInit = false
}

func getClient() (*authzclient.Client, error) {
	mu.Lock()
	defer mu.Unlock()

	if clientInit && client != nil {
		return client, nil
	}

	c, err := authzclient.New(authzclient.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	client = c
	clientInit = true
	return client, nil
}

func requestTimeout(c *authzclient.Client) time.Duration {
	cfg := c.Config()
	if cfg == nil || cfg.HTTP.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.HTTP.Timeout) * time.Second
}

func logDiagnostic(ctx context.Context, message string, err error) {
	if err != nil {
		logger.Error(ctx, message, err, nil)
	} else {
		logger.Info(ctx, message, nil)
	}
	writeSyslog(message)
}

func writeSyslog(message string) {
	w, err := syslog.New(syslog.LOG_AUTHPRIV|syslog.LOG_NOTICE, "sgnl-pam")
	if err != nil {
		return
	}
	defer w.Close()
	_, _ = w.Write([]byte(message))
}
