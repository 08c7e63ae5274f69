// Package elastic implements db.Store over the Elasticsearch/OpenSearch REST API.
package elastic

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kailas-cloud/pinsearch/internal/db"
	"github.com/kailas-cloud/pinsearch/internal/version"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch-compatible cluster.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	VerifyCerts bool
	CACert      string
	Timeout     time.Duration
}

// Store talks to Elasticsearch or OpenSearch over HTTP.
type Store struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewStore creates an Elasticsearch store. Only the first address is used.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		baseURL:  strings.TrimRight(cfg.Addrs[0], "/"),
		username: cfg.Username,
		password: cfg.Password,
		client:   client,
	}, nil
}

// newHTTPClient builds an *http.Client with TLS settings from the config.
// VerifyCerts=false trusts any certificate (local clusters with self-signed certs).
func newHTTPClient(cfg Config) (*http.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if !cfg.VerifyCerts {
		tlsConfig.InsecureSkipVerify = true //nolint:gosec // opt-in via database.verify_certs=false
	}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("reading CA certificate %s: %w", cfg.CACert, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate %s", cfg.CACert)
		}
		tlsConfig.RootCAs = pool
	}

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		},
	}, nil
}

// Name returns the backend name for logging purposes.
func (s *Store) Name() string { return "elasticsearch" }

// Ping checks cluster reachability via _cluster/health.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.do(ctx, db.OpHealth, http.MethodGet, "/_cluster/health", "", nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.client.CloseIdleConnections()
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// EnsureIndex is a no-op: Elasticsearch creates indexes on first write.
func (s *Store) EnsureIndex(_ context.Context, _ *db.IndexDefinition) error {
	return nil
}

// do executes a request and returns the response body of a 2xx reply.
// Non-2xx replies become *db.HTTPStatusError; a 404 index_not_found_exception
// additionally matches db.ErrIndexNotFound.
func (s *Store) do(
	ctx context.Context, op, method, path, contentType string, body []byte,
) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	url := s.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		statusErr := &db.HTTPStatusError{StatusCode: resp.StatusCode, URL: url, Body: truncate(respBody, 512)}
		if resp.StatusCode == http.StatusNotFound && bytes.Contains(respBody, []byte("index_not_found_exception")) {
			return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrIndexNotFound, statusErr)}
		}
		return nil, &db.Error{Op: op, Err: statusErr}
	}
	return respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
