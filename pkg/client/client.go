// Package client provides an HTTP client for the chainmap API server.
// It implements editor.Persistence so the editor controller can load and
// save chain drafts over the wire.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/topology"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrNotFound indicates the requested resource does not exist on the server.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork indicates a transport failure or an unexpected server response.
	ErrNetwork = errors.New("network error")
)

// Client talks to a chainmap API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

// errorBody mirrors the server's error response shape.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// listBody mirrors the server's chain list response shape.
type listBody struct {
	Chains []chain.Summary `json:"chains"`
	Count  int             `json:"count"`
}

// FetchChain retrieves a chain draft by ID.
func (c *Client) FetchChain(ctx context.Context, chainID string) (*chain.Draft, error) {
	var draft chain.Draft
	if err := c.do(ctx, http.MethodGet, "/chains/"+chainID, nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// FetchChainsForProject lists chain summaries for a project.
func (c *Client) FetchChainsForProject(ctx context.Context, projectID string) ([]chain.Summary, error) {
	var body listBody
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/chains", nil, &body); err != nil {
		return nil, err
	}
	return body.Chains, nil
}

// CreateChain creates a new chain in the given project and returns the stored draft.
func (c *Client) CreateChain(ctx context.Context, projectID string, draft *chain.Draft) (*chain.Draft, error) {
	var created chain.Draft
	if err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/chains", draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateChain replaces the stored chain with the given draft and returns the result.
func (c *Client) UpdateChain(ctx context.Context, chainID string, draft *chain.Draft) (*chain.Draft, error) {
	var updated chain.Draft
	if err := c.do(ctx, http.MethodPut, "/chains/"+chainID, draft, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteChain removes a chain by ID.
func (c *Client) DeleteChain(ctx context.Context, chainID string) error {
	return c.do(ctx, http.MethodDelete, "/chains/"+chainID, nil, nil)
}

// FetchTopology retrieves the node tree for a project.
func (c *Client) FetchTopology(ctx context.Context, projectID string) ([]*topology.Node, error) {
	var body struct {
		Nodes []*topology.Node `json:"nodes"`
		Count int              `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/topology", nil, &body); err != nil {
		return nil, err
	}
	return body.Nodes, nil
}

// CreateHost registers a host in the project's topology.
func (c *Client) CreateHost(ctx context.Context, projectID, address, hostname string) (*topology.Host, error) {
	req := map[string]string{"address": address, "hostname": hostname}
	var host topology.Host
	if err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/hosts", req, &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// CreateService registers a service under an existing host.
func (c *Client) CreateService(ctx context.Context, hostID string, port int, protocol, name string) (*topology.Service, error) {
	req := map[string]any{"port": port, "protocol": protocol, "name": name}
	var svc topology.Service
	if err := c.do(ctx, http.MethodPost, "/hosts/"+hostID+"/services", req, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do executes one request and decodes the response into out (when non-nil).
// Transport failures and unexpected statuses map onto the client's error
// taxonomy: 404 becomes ErrNotFound, 400 becomes a chain.ValidationError
// carrying the server's message, everything else wraps ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	json.Unmarshal(data, &eb)

	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest:
		return chain.NewValidationError(msg)
	default:
		return fmt.Errorf("%w: server returned %d: %s", ErrNetwork, resp.StatusCode, msg)
	}
}
