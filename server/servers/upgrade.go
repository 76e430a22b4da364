package servers

import (
	"errors"
	"net/http"
	"time"

	"github.com/websmith/wsaccept/negotiation"
	"github.com/websmith/wsaccept/shared/handoff"
)

// completeHandoff writes the 101 response onto the hijacked connection and
// resolves the handle with the raw stream. This is the point where the
// connection stops being HTTP: from here on the negotiation layer's channel
// goroutine owns it.
func completeHandoff(w http.ResponseWriter, response *negotiation.Response, handle *handoff.Handle) error {
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		err := errors.New("response writer does not support hijacking")
		handle.Fail(err)
		return err
	}

	conn, rw, err := hijacker.Hijack()
	if err != nil {
		handle.Fail(err)
		return err
	}

	if err := response.Write(rw.Writer); err != nil {
		handle.Fail(err)
		_ = conn.Close()
		return err
	}
	if err := rw.Writer.Flush(); err != nil {
		handle.Fail(err)
		_ = conn.Close()
		return err
	}

	// Clear any server read/write deadlines left over from the HTTP phase.
	_ = conn.SetDeadline(time.Time{})

	handle.Resolve(handoff.Hijacked(conn, rw.Reader))
	return nil
}
