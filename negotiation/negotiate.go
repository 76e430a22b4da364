// Package negotiation implements the server side of the RFC 6455 opening
// handshake: it validates an inbound upgrade request, negotiates a
// subprotocol, signs the accept key, and hands the surrendered connection to
// a message channel once the HTTP layer completes the protocol switch.
package negotiation

import (
	"context"
	"net/http"
	"strings"

	"github.com/gobwas/httphead"

	"github.com/websmith/wsaccept/channel"
	"github.com/websmith/wsaccept/shared/handoff"
)

// Negotiator holds the validated state of one WebSocket upgrade request. It
// is consumed exactly once by Upgrade; dropping it without calling Upgrade
// abandons the handshake and no response is ever produced.
type Negotiator struct {
	opts     channel.Options
	key      string
	offered  string // raw Sec-WebSocket-Protocol value, unparsed
	protocol string
	handle   *handoff.Handle
}

// Validate checks r against the WebSocket upgrade contract. The checks run
// in order and the first failure is returned as a Rejection: method GET,
// Connection tokens include "upgrade", Upgrade equals "websocket",
// Sec-WebSocket-Version equals "13", Sec-WebSocket-Key present.
//
// The request must carry a handoff handle (handoff.Attach); its absence
// means the request did not arrive through an upgrade-capable front end,
// which is a contract violation by the embedding layer, and panics.
func Validate(r *http.Request, opts channel.Options) (*Negotiator, error) {
	if r.Method != http.MethodGet {
		return nil, MethodNotGet
	}
	if !headerHasToken(r.Header, "Connection", "upgrade") {
		return nil, InvalidConnectionHeader
	}
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return nil, InvalidUpgradeHeader
	}
	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, InvalidWebSocketVersionHeader
	}
	key := r.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, WebSocketKeyHeaderMissing
	}

	h := handoff.FromRequest(r)
	if h == nil {
		panic("negotiation: request carries no handoff handle")
	}

	return &Negotiator{
		opts:    opts,
		key:     key,
		offered: r.Header.Get("Sec-WebSocket-Protocol"),
		handle:  h,
	}, nil
}

// headerHasToken reports whether any comma-separated token of the named
// header equals token case-insensitively. Token matching is deliberately
// stricter than a substring scan: a lone "dont-upgrade-me" token does not
// count as "upgrade".
func headerHasToken(h http.Header, name string, token string) bool {
	for _, value := range h.Values(name) {
		found := false
		httphead.ScanTokens([]byte(value), func(t []byte) bool {
			if strings.EqualFold(string(t), token) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// Protocols selects the subprotocol: candidates are in decreasing server
// preference, and the first one the client offered anywhere in its
// Sec-WebSocket-Protocol header wins (trimmed, exact match). No offer or no
// intersection leaves the negotiator without a protocol, which is not an
// error; the response then simply omits the header.
func (n *Negotiator) Protocols(candidates ...string) *Negotiator {
	if n.offered == "" {
		return n
	}
	for _, candidate := range candidates {
		for _, offered := range strings.Split(n.offered, ",") {
			if strings.TrimSpace(offered) == candidate {
				n.protocol = candidate
				return n
			}
		}
	}
	return n
}

// Protocol returns the selected subprotocol, empty when none matched.
func (n *Negotiator) Protocol() string {
	return n.protocol
}

// Upgrade finalizes the handshake. It returns the 101 response for the HTTP
// layer to write, and concurrently waits for the connection handoff: once
// the raw stream arrives it is wrapped in a server-role channel carrying the
// negotiated subprotocol and passed to callback on its own goroutine. If the
// handoff is cancelled the callback never runs.
func (n *Negotiator) Upgrade(callback func(*channel.Channel)) *Response {
	handle := n.handle
	opts := n.opts
	protocol := n.protocol

	go func() {
		conn, err := handle.Wait(context.Background())
		if err != nil {
			return
		}
		callback(channel.NewServer(conn, protocol, opts))
	}()

	// Assigned directly so the wire keeps the RFC's exact header casing;
	// Header.Set would canonicalize Sec-WebSocket-* to Sec-Websocket-*.
	header := http.Header{
		"Connection":           {"upgrade"},
		"Upgrade":              {"websocket"},
		"Sec-WebSocket-Accept": {AcceptKey(n.key)},
	}
	if protocol != "" {
		header["Sec-WebSocket-Protocol"] = []string{protocol}
	}

	return &Response{
		StatusCode: http.StatusSwitchingProtocols,
		Header:     header,
	}
}
