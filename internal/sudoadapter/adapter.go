// Package sudoadapter implements the sudo-style host-plugin contract: the
// open/check/list/version/init_session/close state machine a privilege
// command framework drives once per invocation.
package sudoadapter

import (
	"context"
	"fmt"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/authzclient"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/config"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/logging"
)

// State is the adapter's position in its per-invocation state machine.
type State int

const (
	Unopened State = iota
	Opened
	Checking
	Listing
	Validating
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Opened:
		return "opened"
	case Checking:
		return "checking"
	case Listing:
		return "listing"
	case Validating:
		return "validating"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ReturnCode mirrors the host plugin ABI's integer return codes bit-exactly
// so a future C shim can forward them without translation.
type ReturnCode int

const (
	Accept     ReturnCode = 1
	Reject     ReturnCode = 0
	Error      ReturnCode = -1
	UsageError ReturnCode = -2
)

// SupportedAPIMajor is the policy-plugin API major version this adapter
// implements; Open rejects any other major version.
const SupportedAPIMajor = 1

// PrintFunc mirrors the host's conversation/print callback used for
// access-granted messages and list output.
type PrintFunc func(format string, args ...interface{})

// Adapter holds the per-invocation state a single open/…/close cycle uses.
// A new Adapter must be constructed per invocation; it is not safe to
// reuse across invocations or to call concurrently.
type Adapter struct {
	state State

	client *authzclient.Client
	cfg    *config.Config
	logger *logging.Logger
	print  PrintFunc

	// envp, userInfo, and settings are loaned by the host: the adapter
	// never mutates or frees them.
	envp     []string
	userInfo []string
	settings []string

	accessMsg        bool
	commandAttribute string

	principal string
}

// New constructs an unopened Adapter.
func New() *Adapter {
	return &Adapter{state: Unopened}
}

// NewOpened constructs an Adapter already in the Opened state around a
// caller-supplied client, bypassing configuration discovery. Tests use this
// to inject an authzclient.Client pointed at an httptest server, per the
// adapter's injectable-transport design.
func NewOpened(client *authzclient.Client, accessMsg bool, commandAttribute string, print PrintFunc, userInfo, envp []string) *Adapter {
	return &Adapter{
		state:            Opened,
		client:           client,
		cfg:              client.Config(),
		logger:           logging.New("sudoadapter", logging.LevelInfo, logging.DestinationStderr),
		print:            print,
		userInfo:         userInfo,
		envp:             envp,
		accessMsg:        accessMsg,
		commandAttribute: commandAttribute,
	}
}

// Open verifies the API major version, parses plugin-local settings,
// constructs and validates the authorization client, and stores the
// host-owned envp/user_info references. It never frees settings, userInfo,
// or envp.
func (a *Adapter) Open(apiVersionMajor int, print PrintFunc, settings, userInfo, envp, args []string) (ReturnCode, string) {
	if a.state != Unopened {
		return UsageError, "plugin opened out of sequence"
	}
	if apiVersionMajor != SupportedAPIMajor {
		return Error, fmt.Sprintf("unsupported policy plugin API version %d", apiVersionMajor)
	}

	a.print = print
	a.settings = settings
	a.userInfo = userInfo
	a.envp = envp

	configPath := settingValue(settings, "config_path")
	debugOverride, hasDebug := settingBoolOK(settings, "debug")

	opts := authzclient.Options{ConfigPath: configPath}
	if hasDebug {
		opts.Debug = &debugOverride
	}

	client, err := authzclient.New(opts)
	if err != nil {
		return Error, "policy error: configuration failed"
	}
	if !client.Valid() {
		client.Close()
		return Error, "policy error: client not initialized"
	}

	a.cfg = client.Config()
	a.client = client
	a.logger = logging.New("sudoadapter", logging.ParseLevel(a.cfg.LogLevel), logging.DestinationStderr)

	a.accessMsg = a.cfg.AccessMsgEnabled()
	if v, ok := settingBoolOK(settings, "access_msg"); ok {
		a.accessMsg = v
	}
	a.commandAttribute = a.cfg.Sudo.CommandAttribute
	if v := settingValue(settings, "command_attribute"); v != "" {
		a.commandAttribute = v
	}

	a.state = Opened
	return Accept, ""
}

// Version returns the library version string the host prints for -V/--version.
func (a *Adapter) Version(verbose bool) string {
	if verbose {
		return "SGNL sudo policy plugin 1.0 (authorization core)"
	}
	return "SGNL sudo policy plugin 1.0"
}

// InitSession passes the stored envp through unchanged.
func (a *Adapter) InitSession(pwd string) (ReturnCode, []string) {
	if a.client == nil {
		return Error, nil
	}
	a.logger.Debug(context.Background(), "init_session", map[string]interface{}{"pwd": pwd})
	return Accept, a.envp
}

// Close destroys the client and clears stored state references. It is safe
// to call multiple times.
func (a *Adapter) Close(exitStatus int, errorFlag bool) {
	if a.logger != nil {
		a.logger.Debug(context.Background(), "close", map[string]interface{}{"exit_status": exitStatus, "error": errorFlag})
	}
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	a.envp = nil
	a.userInfo = nil
	a.settings = nil
	a.state = Closed
}
