package sudoadapter

import (
	"github.com/tguy-sgnl/sgnl-linux-host/internal/authzclient"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
)

// List implements the host's `list` operation: with a command given, it
// prints a single allowed/denied line for that command; with none given,
// it enumerates every asset the principal may execute.
func (a *Adapter) List(argv []string, verbose bool, listUser string) (ReturnCode, string) {
	a.state = Listing
	defer func() { a.state = Opened }()

	if a.client == nil {
		return Error, "policy error: client not initialized"
	}

	principal := resolvePrincipal(a.userInfo)
	if principal == "" || principal == unknownPrincipal {
		return Error, "policy error: could not resolve principal"
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	if len(argv) > 0 {
		result := a.client.EvaluateAccess(ctx, principal, argv[0], authzclient.ActionExecute)
		if a.print != nil {
			if result.Allowed() {
				a.print("%s may run %s\n", principal, argv[0])
			} else {
				a.print("%s may NOT run %s\n", principal, argv[0])
			}
		}
		return Accept, ""
	}

	outcome := a.client.SearchAssets(ctx, principal, authzclient.ActionExecute)
	if outcome.Kind != errorsx.Ok {
		return Error, "policy error: search failed"
	}
	if a.print != nil {
		for _, asset := range outcome.AssetIDs {
			a.print("%s\n", asset)
		}
	}
	return Accept, ""
}
