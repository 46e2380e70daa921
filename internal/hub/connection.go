// ABOUTME: Scoped HTTP connection to the orchestration hub API
// ABOUTME: Open probes the endpoint, Close releases it; all agent ops go through it

package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds each individual hub request unless overridden.
const DefaultTimeout = 30 * time.Second

// Connection is a scoped handle to a hub endpoint. It is created by Open and
// released by Close; a closed connection rejects further requests. Connections
// are safe for use by a single publish workflow — they hold no mutable state
// beyond the closed flag.
type Connection struct {
	baseURL string
	client  *http.Client
	closed  atomic.Bool
}

// Option configures a Connection before the handshake runs.
type Option func(*Connection)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Connection) {
		c.client.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. Intended for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Connection) {
		c.client = hc
	}
}

// Open establishes a connection to the hub at the given endpoint and verifies
// it with a handshake probe. It fails with ErrConnection when the endpoint is
// unreachable or rejects the probe; that failure is fatal to any workflow
// depending on the connection and is never retried here.
func Open(ctx context.Context, endpoint string, opts ...Option) (*Connection, error) {
	conn := &Connection{
		baseURL: strings.TrimSuffix(endpoint, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(conn)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, conn.baseURL+"/api/v1/ping", nil)
	if err != nil {
		return nil, fmt.Errorf("creating handshake request: %w", err)
	}

	resp, err := conn.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: handshake rejected with status %d", ErrConnection, resp.StatusCode)
	}

	return conn, nil
}

// Close releases the connection. Safe to call more than once; requests made
// after Close fail with ErrConnection.
func (c *Connection) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.client.CloseIdleConnections()
	}
	return nil
}

// Endpoint returns the base URL this connection talks to.
func (c *Connection) Endpoint() string {
	return c.baseURL
}

// ListAgents returns a summary of every agent the hub currently holds.
func (c *Connection) ListAgents(ctx context.Context) ([]AgentSummary, error) {
	var out struct {
		Agents []AgentSummary `json:"agents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/agents", nil, &out); err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	return out.Agents, nil
}

// ListTools returns the tool catalog the hub can resolve blueprint names against.
func (c *Connection) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	var out struct {
		Tools []ToolDescriptor `json:"tools"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/tools", nil, &out); err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	return out.Tools, nil
}

// ListStrategies returns the strategy catalog the hub can resolve.
func (c *Connection) ListStrategies(ctx context.Context) ([]StrategyDescriptor, error) {
	var out struct {
		Strategies []StrategyDescriptor `json:"strategies"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/strategies", nil, &out); err != nil {
		return nil, fmt.Errorf("listing strategies: %w", err)
	}
	return out.Strategies, nil
}

// doJSON performs one request against the hub API. A non-nil body is encoded
// as JSON; a non-nil out receives the decoded 2xx response. Non-2xx responses
// become APIErrors; transport failures become ErrConnection.
func (c *Connection) doJSON(ctx context.Context, method, path string, body, out any) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: connection closed", ErrConnection)
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
