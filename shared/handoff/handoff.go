// Package handoff models the one-shot surrender of a raw network connection
// from an HTTP front end to a WebSocket message channel. The front end
// attaches a Handle to the upgrade request, writes the 101 response, and then
// resolves the handle with the hijacked connection; the negotiation layer
// waits on the handle from a separate goroutine.
package handoff

import (
	"context"
	"errors"
	"net"
	"sync"
)

// ErrCancelled is reported by Wait when the handle completed without ever
// receiving a connection.
var ErrCancelled = errors.New("handoff: cancelled")

// Handle is a single-use promise for the raw duplex stream that backs an
// upgraded request. Exactly one of Resolve, Fail or Cancel takes effect;
// later calls are no-ops, except that a connection delivered to an already
// completed handle is closed so it does not leak.
type Handle struct {
	mu   sync.Mutex
	done chan struct{}
	conn net.Conn
	err  error
}

func New() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Resolve delivers the connection to the waiter.
func (h *Handle) Resolve(conn net.Conn) {
	h.complete(conn, nil)
}

// Fail completes the handle with an error; the waiter never receives a
// connection.
func (h *Handle) Fail(err error) {
	if err == nil {
		err = ErrCancelled
	}
	h.complete(nil, err)
}

// Cancel completes the handle with ErrCancelled. Safe to call from a
// deferred cleanup path regardless of whether the handle resolved.
func (h *Handle) Cancel() {
	h.complete(nil, ErrCancelled)
}

func (h *Handle) complete(conn net.Conn, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		if conn != nil {
			_ = conn.Close()
		}
	default:
		h.conn = conn
		h.err = err
		close(h.done)
	}
}

// Wait blocks until the handle completes or ctx is done. It may be called
// any number of times; every call observes the same outcome.
func (h *Handle) Wait(ctx context.Context) (net.Conn, error) {
	select {
	case <-h.done:
		return h.conn, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
