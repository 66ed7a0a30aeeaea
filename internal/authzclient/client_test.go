package authzclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/config"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := config.New()
	cfg.APIURL = serverURL
	cfg.APIToken = "test-token"
	c, err := NewWithConfig(cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestEvaluateAccessAllow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/access/v2/evaluations", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_ = json.NewEncoder(w).Encode(responseWire{Decisions: []decisionWire{{Decision: "Allow"}}})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result := c.EvaluateAccess(context.Background(), "alice", "cat", "")
	require.Equal(t, errorsx.Allowed, result.Kind)
	require.Equal(t, "Allow", result.DecisionString)
}

func TestAuthFailure401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result := c.EvaluateAccess(context.Background(), "alice", "cat", "")
	require.Equal(t, errorsx.AuthError, result.Kind)
	require.Contains(t, c.LastError(), "401")
	require.NotContains(t, c.LastError(), "test-token")
}

func TestEmptyDecisionsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(responseWire{Decisions: []decisionWire{}})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result := c.EvaluateAccess(context.Background(), "alice", "cat", "")
	require.Equal(t, errorsx.Denied, result.Kind)
	require.Empty(t, result.Reason)
}

func TestSearchNoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(responseWire{Decisions: []decisionWire{{Decision: "Deny", AssetID: "a"}}})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	outcome := c.SearchAssets(context.Background(), "alice", "")
	require.Equal(t, errorsx.Ok, outcome.Kind)
	require.Empty(t, outcome.AssetIDs)
}

func TestBatchTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(responseWire{Decisions: []decisionWire{
			{Decision: "Allow"},
			{Decision: "Allow"},
		}})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	results := c.EvaluateAccessBatch(context.Background(), "alice", []Query{
		{AssetID: "a", Action: "sudo"},
		{AssetID: "b", Action: "cat"},
		{AssetID: "c", Action: "cat"},
	})
	require.Len(t, results, 3)
	require.Equal(t, errorsx.Allowed, results[0].Kind)
	require.Equal(t, errorsx.Allowed, results[1].Kind)
	require.Equal(t, errorsx.Denied, results[2].Kind)
	require.Equal(t, "Deny", results[2].DecisionString)
}

func TestBatchPositionalCorrespondence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req requestWire
		_ = json.NewDecoder(r.Body).Decode(&req)
		decisions := make([]decisionWire, len(req.Queries))
		for i, q := range req.Queries {
			decisions[i] = decisionWire{Decision: "Allow", AssetID: q.AssetID}
			if i == 1 {
				decisions[i].Decision = "Deny"
			}
		}
		_ = json.NewEncoder(w).Encode(responseWire{Decisions: decisions})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	results := c.EvaluateAccessBatch(context.Background(), "alice", []Query{
		{AssetID: "x", Action: "sudo"},
		{AssetID: "x", Action: "cat"}, // repeated asset id, distinguished by position
		{AssetID: "x", Action: "ls"},
	})
	require.Equal(t, errorsx.Allowed, results[0].Kind)
	require.Equal(t, errorsx.Denied, results[1].Kind)
	require.Equal(t, errorsx.Allowed, results[2].Kind)
}

func TestEvaluateAccessEmptyPrincipalFailsBeforeHTTP(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result := c.EvaluateAccess(context.Background(), "", "cat", "")
	require.Equal(t, errorsx.Error, result.Kind)
	require.False(t, called, "no HTTP call should be made for an empty principal")
}

func TestErrorMessageOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "tenant suspended"},
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result := c.EvaluateAccess(context.Background(), "alice", "cat", "")
	require.Equal(t, errorsx.Error, result.Kind)
	require.Equal(t, "tenant suspended", result.ErrorMessage)
}

func TestInvalidClientNeverIssuesRequests(t *testing.T) {
	c := &Client{}
	require.False(t, c.Valid())
	result := c.EvaluateAccess(context.Background(), "alice", "cat", "")
	require.Equal(t, errorsx.Error, result.Kind)
}
