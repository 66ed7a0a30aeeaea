package authzclient

import (
	"context"
	"time"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
)

// Query is a single (principal, asset?, action) access question. Asset is
// empty for search queries, which carry only an action.
type Query struct {
	AssetID string
	Action  string
}

// Result is the detailed outcome of one access query.
type Result struct {
	Kind           errorsx.Kind
	DecisionString string
	Reason         string
	AssetID        string
	Action         string
	PrincipalID    string
	Timestamp      time.Time
	RequestID      string
	ErrorMessage   string
	ErrorCode      string
}

// Allowed reports whether this result represents a granted decision. The
// invariant result=Allowed iff decision_string="Allow" holds by
// construction: Kind is only ever set to Allowed when DecisionString is
// exactly "Allow".
func (r Result) Allowed() bool {
	return r.Kind == errorsx.Allowed
}

// SearchOutcome is the detailed outcome of search_assets.
type SearchOutcome struct {
	Kind          errorsx.Kind
	AssetIDs      []string
	NextPageToken string
	HasMorePages  bool
	PrincipalID   string
	Action        string
	RequestID     string
	ErrorMessage  string
}

// CheckAccess evaluates a single query and collapses the result to
// Allowed/Denied/an error kind, discarding the detailed fields
// EvaluateAccess exposes.
func (c *Client) CheckAccess(ctx context.Context, principal, asset, action string) errorsx.Kind {
	if action == "" {
		action = ActionExecute
	}
	result := c.EvaluateAccess(ctx, principal, asset, action)
	return result.Kind
}

// EvaluateAccess returns a detailed access result for a single query.
// Action defaults to "execute".
func (c *Client) EvaluateAccess(ctx context.Context, principal, asset, action string) Result {
	if action == "" {
		action = ActionExecute
	}
	if principal == "" || asset == "" {
		return Result{Kind: errorsx.Error, ErrorMessage: "principal and asset must be non-empty", PrincipalID: principal, AssetID: asset, Action: action}
	}
	results := c.EvaluateAccessBatch(ctx, principal, []Query{{AssetID: asset, Action: action}})
	return results[0]
}

// EvaluateAccessBatch sends n queries as a single batch (or, when
// batch_evaluation is disabled, as n sequential calls) and returns exactly
// n results in query order. If the response carries fewer decisions than
// queries, the remaining positions receive synthetic Denied results.
func (c *Client) EvaluateAccessBatch(ctx context.Context, principal string, queries []Query) []Result {
	n := len(queries)
	results := make([]Result, n)

	if !c.Valid() {
		for i, q := range queries {
			results[i] = Result{Kind: errorsx.Error, ErrorMessage: "client is not initialized", AssetID: q.AssetID, Action: normalizeAction(q.Action)}
		}
		return results
	}

	if principal == "" {
		for i, q := range queries {
			results[i] = Result{Kind: errorsx.Error, ErrorMessage: "principal must be non-empty", AssetID: q.AssetID, Action: normalizeAction(q.Action)}
		}
		return results
	}

	if !c.cfg.BatchEvaluationEnabled() {
		for i, q := range queries {
			results[i] = c.evaluateOne(ctx, principal, q)
		}
		return results
	}

	wire := requestWire{
		Principal: principalWire{ID: principal, DeviceID: c.deviceID()},
		Queries:   make([]queryWire, n),
	}
	for i, q := range queries {
		wire.Queries[i] = queryWire{AssetID: q.AssetID, Action: normalizeAction(q.Action)}
	}

	outcome := c.post(ctx, evaluationPath, wire)
	reqID := c.LastRequestID()

	if outcome.kind != errorsx.Ok {
		for i, q := range queries {
			results[i] = Result{
				Kind:         outcome.kind,
				AssetID:      q.AssetID,
				Action:       normalizeAction(q.Action),
				PrincipalID:  principal,
				RequestID:    reqID,
				ErrorMessage: outcome.message,
			}
		}
		return results
	}

	decisions := outcome.response.Decisions
	now := time.Now()
	for i, q := range queries {
		action := normalizeAction(q.Action)
		if i >= len(decisions) {
			// Conservative default: a truncated response never grants by
			// omission.
			results[i] = Result{
				Kind:           errorsx.Denied,
				DecisionString: "Deny",
				AssetID:        q.AssetID,
				Action:         action,
				PrincipalID:    principal,
				Timestamp:      now,
				RequestID:      reqID,
			}
			continue
		}
		results[i] = decisionToResult(decisions[i], q.AssetID, action, principal, reqID, now)
	}
	return results
}

func (c *Client) evaluateOne(ctx context.Context, principal string, q Query) Result {
	action := normalizeAction(q.Action)
	wire := requestWire{
		Principal: principalWire{ID: principal, DeviceID: c.deviceID()},
		Queries:   []queryWire{{AssetID: q.AssetID, Action: action}},
	}
	outcome := c.post(ctx, evaluationPath, wire)
	reqID := c.LastRequestID()

	if outcome.kind != errorsx.Ok {
		return Result{Kind: outcome.kind, AssetID: q.AssetID, Action: action, PrincipalID: principal, RequestID: reqID, ErrorMessage: outcome.message}
	}
	if len(outcome.response.Decisions) == 0 {
		return Result{Kind: errorsx.Denied, DecisionString: "Deny", AssetID: q.AssetID, Action: action, PrincipalID: principal, RequestID: reqID, Timestamp: time.Now()}
	}
	return decisionToResult(outcome.response.Decisions[0], q.AssetID, action, principal, reqID, time.Now())
}

func decisionToResult(d decisionWire, assetID, action, principal, reqID string, ts time.Time) Result {
	kind := errorsx.Denied
	decisionString := d.Decision
	if decisionString == "" {
		decisionString = "Deny"
	}
	if decisionString == decisionAllow {
		kind = errorsx.Allowed
	}
	resolvedAsset := assetID
	if d.AssetID != "" {
		resolvedAsset = d.AssetID
	}
	return Result{
		Kind:           kind,
		DecisionString: decisionString,
		Reason:         d.Reason,
		AssetID:        resolvedAsset,
		Action:         action,
		PrincipalID:    principal,
		Timestamp:      ts,
		RequestID:      reqID,
	}
}

// SearchAssets returns the asset identifiers for which principal has
// action allowed. Action defaults to "list". The wire protocol described
// by §6 carries no pagination fields, so NextPageToken/HasMorePages are
// always zero-valued here even though the schema reserves room for them.
func (c *Client) SearchAssets(ctx context.Context, principal, action string) SearchOutcome {
	if action == "" {
		action = ActionList
	}
	if principal == "" {
		return SearchOutcome{Kind: errorsx.Error, ErrorMessage: "principal must be non-empty", Action: action}
	}

	wire := requestWire{
		Principal: principalWire{ID: principal, DeviceID: c.deviceID()},
		Queries:   []queryWire{{Action: action}},
	}
	outcome := c.post(ctx, searchPath, wire)
	reqID := c.LastRequestID()

	if outcome.kind != errorsx.Ok {
		return SearchOutcome{Kind: outcome.kind, PrincipalID: principal, Action: action, RequestID: reqID, ErrorMessage: outcome.message}
	}

	var assets []string
	for _, d := range outcome.response.Decisions {
		if d.Decision == decisionAllow && d.AssetID != "" {
			assets = append(assets, d.AssetID)
		}
	}
	return SearchOutcome{Kind: errorsx.Ok, AssetIDs: assets, PrincipalID: principal, Action: action, RequestID: reqID}
}

func normalizeAction(action string) string {
	if action == "" {
		return ActionExecute
	}
	return action
}
