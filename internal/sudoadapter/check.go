package sudoadapter

import (
	"context"
	"os"
	"time"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/authzclient"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
)

const (
	actionSudo          = "sudo"
	accessDeniedMessage = "Access denied by SGNL policy"
)

// CheckResult is the full outcome of Check: the host plugin ABI collapses
// this to (ReturnCode, command_info, out_argv, out_envp, errstr), but
// tests and cmd/sgnl-sudo-plugin want the structured form too.
type CheckResult struct {
	Code        ReturnCode
	CommandInfo CommandInfo
	OutArgv     []string
	OutEnvp     []string
	ErrString   string
}

// Check is the main decision path: it resolves the principal, builds the
// AND-of-decisions batch over argv, and on Allowed constructs command_info.
// All out-values are unset on every non-Accept path — no partial
// construction ever escapes.
func (a *Adapter) Check(argv []string, envAdd []string) CheckResult {
	a.state = Checking
	defer func() { a.state = Opened }()

	if len(argv) == 0 {
		return CheckResult{Code: Reject, ErrString: "no command"}
	}
	if a.client == nil {
		return CheckResult{Code: Error, ErrString: "policy error: client not initialized"}
	}

	principal := resolvePrincipal(a.userInfo)
	a.principal = principal
	if principal == "" || principal == unknownPrincipal {
		return CheckResult{Code: Error, ErrString: "policy error: could not resolve principal"}
	}

	queries := buildQueries(argv)
	ctx, cancel := a.requestContext()
	defer cancel()

	results := a.client.EvaluateAccessBatch(ctx, principal, queries)
	aggregate := aggregateAND(results)

	if aggregate.Kind != errorsx.Allowed {
		if aggregate.Kind == errorsx.Denied {
			return CheckResult{Code: Reject, ErrString: accessDeniedMessage}
		}
		return CheckResult{Code: Error, ErrString: "policy error"}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return CheckResult{Code: Error, ErrString: "policy error: could not determine working directory"}
	}
	commandPath, err := resolveCommandPath(argv[0], a.envp)
	if err != nil {
		return CheckResult{Code: Error, ErrString: "Command not found"}
	}

	if a.accessMsg && a.print != nil {
		a.print("SGNL: access granted for %s to run %s\n", principal, argv[0])
	}

	return CheckResult{
		Code:        Accept,
		CommandInfo: newCommandInfo(commandPath, cwd),
		OutArgv:     argv,
		OutEnvp:     a.envp,
	}
}

// buildQueries implements the documented batch construction: one query for
// argv[0] against action "sudo", then one query per remaining non-empty
// argv element against action argv[0].
func buildQueries(argv []string) []authzclient.Query {
	queries := make([]authzclient.Query, 0, len(argv))
	queries = append(queries, authzclient.Query{AssetID: argv[0], Action: actionSudo})
	for i := 1; i < len(argv); i++ {
		if argv[i] == "" {
			continue
		}
		queries = append(queries, authzclient.Query{AssetID: argv[i], Action: argv[0]})
	}
	return queries
}

// aggregateAND folds batch results with AND-of-decisions: the aggregate is
// Allowed only if every result is Allowed; otherwise it carries the first
// non-Allowed result's kind.
func aggregateAND(results []authzclient.Result) authzclient.Result {
	for _, r := range results {
		if r.Kind != errorsx.Allowed {
			return r
		}
	}
	if len(results) == 0 {
		return authzclient.Result{Kind: errorsx.Error}
	}
	return results[0]
}

func (a *Adapter) requestContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(a.cfg.HTTP.Timeout) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}
