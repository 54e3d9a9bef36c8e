package vco

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// wsHello dials the orchestrator websocket entrypoint and returns the first
// message it pushes, decoded. The portal greets every authenticated
// connection before any subscription is made, which makes the greeting a
// cheap liveness and contract probe.
func (c *Client) wsHello(ctx context.Context) (interface{}, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.timeout,
		TLSClientConfig:  c.tlsConf,
	}

	header := http.Header{}
	header.Set("Authorization", "Token "+c.token)

	c.log.WithField("url", c.wsURL()).Debug("dialing websocket")

	conn, resp, err := dialer.DialContext(ctx, c.wsURL(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("dialing websocket: %w", err)
	}

	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}

	var greeting interface{}
	if err := conn.ReadJSON(&greeting); err != nil {
		return nil, fmt.Errorf("reading websocket greeting: %w", err)
	}

	return greeting, nil
}

// wsURL builds the websocket entrypoint from the configured host, mapping
// http schemes to their websocket equivalents for lab setups.
func (c *Client) wsURL() string {
	host := c.host

	switch {
	case strings.HasPrefix(host, "https://"):
		host = "wss://" + strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = "ws://" + strings.TrimPrefix(host, "http://")
	case !strings.Contains(host, "://"):
		host = "wss://" + host
	}

	return host + "/ws/"
}
