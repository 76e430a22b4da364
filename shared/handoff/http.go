package handoff

import (
	"bufio"
	"context"
	"net"
	"net/http"
)

type contextKey struct{}

// Attach returns a shallow copy of r carrying h. This is how an
// upgrade-capable front end advertises the pending connection surrender to
// the negotiation layer.
func Attach(r *http.Request, h *Handle) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKey{}, h))
}

// FromRequest returns the handle attached to r, or nil when the request did
// not arrive through an upgrade-capable front end.
func FromRequest(r *http.Request) *Handle {
	h, _ := r.Context().Value(contextKey{}).(*Handle)
	return h
}

// Hijacked wraps a hijacked connection so that bytes the HTTP server already
// buffered ahead of the handoff are replayed before further reads.
func Hijacked(conn net.Conn, br *bufio.Reader) net.Conn {
	if br == nil || br.Buffered() == 0 {
		return conn
	}
	return &bufferedConn{Conn: conn, r: br}
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
