package authzclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/errorsx"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/httputil"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/redaction"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/requestid"
	"github.com/tguy-sgnl/sgnl-linux-host/internal/resilience"
)

// httpClient wraps the shared *http.Client with the fields every outbound
// request needs but that don't belong on net/http's own type.
type httpClient struct {
	raw          *http.Client
	maxBodyBytes int64
}

func newHTTPClient(raw *http.Client) *httpClient {
	return &httpClient{raw: raw, maxBodyBytes: httputil.ResolveMaxBodyBytes(0)}
}

// postResult is the outcome of a single POST: either a parsed response body
// or a typed failure kind with a message safe to surface to the host.
type postResult struct {
	kind     errorsx.Kind
	response responseWire
	message  string
}

// post sends body to path with the client's standard headers, retrying
// transport-level and 5xx failures per c.retryCfg, and returns the decoded
// response or a typed failure. It never returns Allowed/Denied directly —
// that determination belongs to the caller once it has walked Decisions.
func (c *Client) post(ctx context.Context, path string, body requestWire) postResult {
	if !c.Valid() {
		return postResult{kind: errorsx.Error, message: "client is not initialized"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return postResult{kind: errorsx.Error, message: "failed to encode request"}
	}

	reqID := requestid.New()
	c.recordRequestID(reqID)

	url := c.baseURL + path
	var result postResult

	retryErr := resilience.Retry(ctx, c.retryCfg, func(err error) bool {
		svcErr := errorsx.GetServiceError(err)
		return svcErr != nil && svcErr.Kind.Retryable()
	}, func() error {
		result = c.doOnce(ctx, url, reqID, payload)
		if result.kind == errorsx.NetworkError || result.kind == errorsx.TimeoutError {
			return errorsx.New(result.kind, result.message)
		}
		return nil
	})

	_ = retryErr // the final attempt's result, not the retry loop's own error, drives the caller's outcome
	if result.kind != errorsx.Ok {
		c.recordError(redaction.Text(result.message))
	}
	return result
}

func (c *Client) doOnce(ctx context.Context, url, reqID string, payload []byte) postResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return postResult{kind: errorsx.Error, message: "failed to build request"}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+string(c.token))
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("User-Agent", c.cfg.HTTP.UserAgent)

	resp, err := c.httpClient.raw.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return postResult{kind: errorsx.TimeoutError, message: "request timed out"}
		}
		return postResult{kind: errorsx.NetworkError, message: "transport error"}
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, c.httpClient.maxBodyBytes)
	rawBody, err := io.ReadAll(limited)
	if err != nil {
		return postResult{kind: errorsx.NetworkError, message: "failed to read response body"}
	}

	return parseResponse(resp.StatusCode, rawBody)
}

func parseResponse(status int, rawBody []byte) postResult {
	if status != http.StatusOK {
		kind := errorsx.FromHTTPStatus(status)
		return postResult{kind: kind, message: fmt.Sprintf("HTTP %d", status)}
	}

	// Cheap targeted probe before the full decode: a 200 response can still
	// carry a top-level error.message the decisions array doesn't explain.
	if msg := gjson.GetBytes(rawBody, "error.message"); msg.Exists() && msg.String() != "" {
		return postResult{kind: errorsx.Error, message: msg.String()}
	}

	var parsed responseWire
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return postResult{kind: errorsx.Error, message: "malformed response body"}
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return postResult{kind: errorsx.Error, message: parsed.Error.Message}
	}

	return postResult{kind: errorsx.Ok, response: parsed}
}

type timeouter interface{ Timeout() bool }

func isTimeoutErr(err error) bool {
	var t timeouter
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return false
}
