// Package vco talks to a VeloCloud Orchestrator portal API. It implements
// the probe.Fetcher contract and carries the builtin endpoint schemas
// velocheck validates out of the box.
package vco

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/velotools/velocheck/internal/probe"
)

// Portal JSON-RPC methods for the builtin endpoints.
const (
	MethodGetEnterprise         = "enterprise/getEnterprise"
	MethodGetEnterpriseEdges    = "enterprise/getEnterpriseEdges"
	MethodGetEnterprisePolicies = "enterprise/getEnterpriseConfigurationsPolicies"
	MethodGetEdgeConfigStack    = "edge/getEdgeConfigurationStack"
	MethodGetEnterpriseEdgeList = "enterprise/getEnterpriseEdgeList"

	// MethodWSHello is not a portal method: it asks the fetcher to dial the
	// orchestrator websocket entrypoint and capture its greeting.
	MethodWSHello = "ws/hello"
)

const defaultTimeout = 30 * time.Second

// ErrPortal is returned when the portal answers but refuses or garbles the
// call: a JSON-RPC error object, a non-200 status or an undecodable body.
var ErrPortal = errors.New("portal error")

// rpcRequest is the JSON-RPC 2.0 envelope the portal expects.
type rpcRequest struct {
	ID      int         `json:"id"`
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// Client calls a VCO portal over JSON-RPC 2.0.
type Client struct {
	host    string
	token   string
	http    *http.Client
	tlsConf *tls.Config
	timeout time.Duration
	nextID  atomic.Int64
	log     logrus.FieldLogger
}

// ClientConfig configures a portal client.
type ClientConfig struct {
	// Host is the orchestrator hostname. A bare hostname gets https; an
	// explicit scheme is kept so lab setups can use plain http.
	Host string

	// Token is sent on every call as "Authorization: Token {token}".
	Token string

	// Timeout bounds one portal call. Zero means defaultTimeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification, for lab
	// orchestrators running on self-signed certificates.
	InsecureSkipVerify bool
}

// NewClient creates a portal client.
func NewClient(log logrus.FieldLogger, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var tlsConf *tls.Config
	transport := http.DefaultTransport

	if cfg.InsecureSkipVerify {
		tlsConf = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // G402: opt-in for lab orchestrators
		transport = &http.Transport{TLSClientConfig: tlsConf}
	}

	return &Client{
		host:    strings.TrimSuffix(cfg.Host, "/"),
		token:   cfg.Token,
		timeout: timeout,
		tlsConf: tlsConf,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log.WithField("component", "vco_client"),
	}
}

var _ probe.Fetcher = (*Client)(nil)

// Fetch implements probe.Fetcher. Params come in as strings from the
// registry; the portal wants identifiers as integers, so the typing happens
// here where the transport is known.
func (c *Client) Fetch(ctx context.Context, method string, params map[string]string) (interface{}, error) {
	if method == MethodWSHello {
		return c.wsHello(ctx)
	}

	return c.Call(ctx, method, shapeParams(method, params))
}

// Call performs one JSON-RPC portal call and returns the decoded result.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	body, err := json.Marshal(rpcRequest{
		ID:      int(c.nextID.Add(1)),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding portal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.portalURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building portal request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.token)

	c.log.WithField("method", method).Debug("calling portal")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling portal: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: portal returned %s", ErrPortal, resp.Status)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %s", ErrPortal, err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%w: %s (code %d)", ErrPortal, rpcResp.Error.Message, rpcResp.Error.Code)
	}

	if len(rpcResp.Result) == 0 {
		return nil, fmt.Errorf("%w: response carries neither result nor error", ErrPortal)
	}

	var result interface{}
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding result: %s", ErrPortal, err)
	}

	return result, nil
}

// portalURL builds the portal entrypoint from the configured host.
func (c *Client) portalURL() string {
	host := c.host
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	return host + "/portal/"
}

// shapeParams converts the registry's string params into the typed JSON the
// portal expects. Identifier and paging params become integers; the
// configuration stack call asks for module bodies, which the portal omits
// unless requested.
func shapeParams(method string, params map[string]string) map[string]interface{} {
	shaped := make(map[string]interface{}, len(params)+1)

	for key, val := range params {
		switch key {
		case "enterpriseId", "edgeId", "id", "limit":
			if n, err := strconv.Atoi(val); err == nil {
				shaped[key] = n
				continue
			}
		case "_filterSpec":
			if b, err := strconv.ParseBool(val); err == nil {
				shaped[key] = b
				continue
			}
		}

		shaped[key] = val
	}

	if method == MethodGetEdgeConfigStack {
		shaped["with"] = []string{"modules"}
	}

	return shaped
}
