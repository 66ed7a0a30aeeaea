// Package httputil builds the *http.Client shared by the authorization
// client, splitting the single end-to-end timeout the decision service sees
// from the connect-phase timeout the dialer enforces.
package httputil

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"strings"
	"time"
)

// ClientConfig mirrors the subset of internal/config.Config that governs
// transport construction.
type ClientConfig struct {
	// Timeout is the end-to-end request timeout. Zero uses DefaultTimeout.
	Timeout time.Duration
	// ConnectTimeout bounds the TCP+TLS dial. Zero uses DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// MaxBodyBytes caps response bodies read by callers via LimitReader.
	// Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// VerifyPeer disables peer certificate chain validation entirely when
	// false (ssl_verify_peer=false).
	VerifyPeer bool
	// VerifyHost disables hostname comparison while still validating the
	// certificate chain when false and VerifyPeer is true
	// (ssl_verify_host=false).
	VerifyHost bool
}

const (
	DefaultTimeout        = 10 * time.Second
	DefaultConnectTimeout = 3 * time.Second
	DefaultMaxBodyBytes   = 1 << 20 // 1MiB
)

// NewClient returns an *http.Client configured per cfg. It never mutates a
// shared client: every call builds a fresh Transport.
func NewClient(cfg ClientConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	tlsConfig := buildTLSConfig(cfg)

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: connectTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func buildTLSConfig(cfg ClientConfig) *tls.Config {
	tlsConfig := &tls.Config{}

	if !cfg.VerifyPeer {
		tlsConfig.InsecureSkipVerify = true
		return tlsConfig
	}
	if !cfg.VerifyHost {
		// Keep chain validation but skip the hostname comparison Go's
		// default verifier would otherwise perform: let the handshake
		// through unverified, then verify the chain ourselves against the
		// system roots without a ServerName constraint.
		tlsConfig.InsecureSkipVerify = true
		tlsConfig.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return verifyChainOnly(rawCerts)
		}
	}
	return tlsConfig
}

func verifyChainOnly(rawCerts [][]byte) error {
	if len(rawCerts) == 0 {
		return x509.CertificateInvalidError{Reason: x509.NotAuthorizedToSign}
	}
	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return err
		}
		certs = append(certs, cert)
	}
	opts := x509.VerifyOptions{Intermediates: x509.NewCertPool()}
	for _, cert := range certs[1:] {
		opts.Intermediates.AddCert(cert)
	}
	_, err := certs[0].Verify(opts)
	return err
}

// ResolveMaxBodyBytes returns the effective cap, applying the package
// default when cfg is unset.
func ResolveMaxBodyBytes(cfg int64) int64 {
	if cfg <= 0 {
		return DefaultMaxBodyBytes
	}
	return cfg
}

// NormalizeBaseURL trims trailing slashes and whitespace so path joins in
// the authorization client never produce a doubled slash.
func NormalizeBaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return strings.TrimRight(trimmed, "/")
}
