package config

import (
	"encoding/json"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	doc := []byte(`{"api_url": "sgnlapis.cloud", "api_token": "tok"}`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.HTTP.Timeout != 10 {
		t.Errorf("HTTP.Timeout = %d, want 10", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.ConnectTimeout != 3 {
		t.Errorf("HTTP.ConnectTimeout = %d, want 3", cfg.HTTP.ConnectTimeout)
	}
	if !cfg.VerifyPeer() || !cfg.VerifyHost() {
		t.Errorf("expected SSL verification on by default")
	}
	if cfg.HTTP.UserAgent != "SGNL-Client/1.0" {
		t.Errorf("UserAgent = %q, want SGNL-Client/1.0", cfg.HTTP.UserAgent)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Sudo.CommandAttribute != CommandAttributeID {
		t.Errorf("CommandAttribute = %q, want id", cfg.Sudo.CommandAttribute)
	}
	if !cfg.AccessMsgEnabled() {
		t.Errorf("expected access_msg true by default")
	}
}

func TestParseLegacyTokenAlias(t *testing.T) {
	doc := []byte(`{"api_url": "sgnlapis.cloud", "protected_system_token": "legacy-tok"}`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.APIToken != "legacy-tok" {
		t.Errorf("APIToken = %q, want legacy-tok", cfg.APIToken)
	}
}

func TestParseMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing api_url", `{"api_token": "tok"}`},
		{"missing api_token", `{"api_url": "sgnlapis.cloud"}`},
		{"empty document", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Errorf("expected error for malformed JSON")
	}
}

func TestTimeoutBoundaries(t *testing.T) {
	build := func(timeout int) []byte {
		doc := map[string]interface{}{
			"api_url":   "sgnlapis.cloud",
			"api_token": "tok",
			"http":      map[string]interface{}{"timeout": timeout},
		}
		data, _ := json.Marshal(doc)
		return data
	}

	cases := []struct {
		timeout int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{300, false},
		{301, true},
	}
	for _, tc := range cases {
		_, err := Parse(build(tc.timeout))
		if tc.wantErr && err == nil {
			t.Errorf("timeout %d: expected error, got nil", tc.timeout)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("timeout %d: unexpected error: %v", tc.timeout, err)
		}
	}
}

func TestTopLevelTimeoutSecondsBoundaries(t *testing.T) {
	build := func(timeout int) []byte {
		doc := map[string]interface{}{
			"api_url":         "sgnlapis.cloud",
			"api_token":       "tok",
			"timeout_seconds": timeout,
		}
		data, _ := json.Marshal(doc)
		return data
	}

	cases := []struct {
		timeout int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{300, false},
		{301, true},
	}
	for _, tc := range cases {
		cfg, err := Parse(build(tc.timeout))
		if tc.wantErr && err == nil {
			t.Errorf("timeout_seconds %d: expected error, got nil", tc.timeout)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("timeout_seconds %d: unexpected error: %v", tc.timeout, err)
		}
		if !tc.wantErr && cfg.HTTP.Timeout != tc.timeout {
			t.Errorf("timeout_seconds %d: HTTP.Timeout = %d, want it folded in", tc.timeout, cfg.HTTP.Timeout)
		}
	}
}

func TestResolvePathDiscoveryOrder(t *testing.T) {
	t.Setenv(envPathVar, "/from/env/config.json")
	if got := ResolvePath("/explicit/path.json"); got != "/explicit/path.json" {
		t.Errorf("explicit path not preferred: got %q", got)
	}
	if got := ResolvePath(""); got != "/from/env/config.json" {
		t.Errorf("env override not used: got %q", got)
	}

	t.Setenv(envPathVar, "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Errorf("default path not used: got %q", got)
	}
}

func TestParseIdempotent(t *testing.T) {
	doc := []byte(`{"api_url": "sgnlapis.cloud", "api_token": "tok", "tenant": "acme"}`)
	first, err := Parse(doc)
	if err != nil {
		t.Fatalf("first Parse failed: %v", err)
	}
	reserialized, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("re-marshal failed: %v", err)
	}
	second, err := Parse(reserialized)
	if err != nil {
		t.Fatalf("second Parse failed: %v", err)
	}
	if first.APIURL != second.APIURL || first.APIToken != second.APIToken || first.Tenant != second.Tenant {
		t.Errorf("Parse is not idempotent across re-serialization: %+v vs %+v", first, second)
	}
}

func TestBatchEvaluationDefaultsTrue(t *testing.T) {
	doc := []byte(`{"api_url": "sgnlapis.cloud", "api_token": "tok"}`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !cfg.BatchEvaluationEnabled() {
		t.Errorf("expected batch_evaluation true by default")
	}
}

func TestBatchEvaluationExplicitFalse(t *testing.T) {
	doc := []byte(`{"api_url": "sgnlapis.cloud", "api_token": "tok", "sudo": {"batch_evaluation": false}}`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.BatchEvaluationEnabled() {
		t.Errorf("expected batch_evaluation false when explicitly set")
	}
}

func TestInvalidCommandAttribute(t *testing.T) {
	doc := []byte(`{"api_url": "sgnlapis.cloud", "api_token": "tok", "sudo": {"command_attribute": "bogus"}}`)
	if _, err := Parse(doc); err == nil {
		t.Errorf("expected validation error for invalid command_attribute")
	}
}
