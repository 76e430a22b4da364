package negotiation

import (
	"fmt"
	"io"
	"net/http"
	"sort"
)

// Response is the 101 Switching Protocols answer the HTTP layer must write
// onto the wire before surrendering the connection.
type Response struct {
	StatusCode int
	Header     http.Header
}

// Write serializes the response head as an HTTP/1.1 message, for writing
// directly onto a hijacked connection. Headers are emitted in sorted order.
func (r *Response) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", r.StatusCode, http.StatusText(r.StatusCode)); err != nil {
		return err
	}

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range r.Header[name] {
			if _, err := fmt.Fprintf(w, "%s: %s\r\n", name, value); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "\r\n")
	return err
}
