package negotiation

import "net/http"

// Rejection enumerates the ways an upgrade request can fail validation. Each
// kind maps to a fixed HTTP status and body; rejections are terminal for the
// request and never retried.
type Rejection int

const (
	// MethodNotGet rejects any request method other than GET.
	MethodNotGet Rejection = iota
	// InvalidConnectionHeader rejects a Connection header whose tokens do
	// not include "upgrade".
	InvalidConnectionHeader
	// InvalidUpgradeHeader rejects an Upgrade header that is not
	// "websocket".
	InvalidUpgradeHeader
	// InvalidWebSocketVersionHeader rejects a Sec-WebSocket-Version header
	// that is not "13".
	InvalidWebSocketVersionHeader
	// WebSocketKeyHeaderMissing rejects a request without a
	// Sec-WebSocket-Key header.
	WebSocketKeyHeaderMissing
)

func (k Rejection) StatusCode() int {
	if k == MethodNotGet {
		return http.StatusMethodNotAllowed
	}
	return http.StatusBadRequest
}

func (k Rejection) Error() string {
	switch k {
	case MethodNotGet:
		return "Request method must be `GET`"
	case InvalidConnectionHeader:
		return "Connection header did not include 'upgrade'"
	case InvalidUpgradeHeader:
		return "`Upgrade` header did not include 'websocket'"
	case InvalidWebSocketVersionHeader:
		return "`Sec-WebSocket-Version` header did not include '13'"
	case WebSocketKeyHeaderMissing:
		return "`Sec-WebSocket-Key` header missing"
	}
	return "invalid WebSocket upgrade request"
}

// Respond writes the rejection to w as the terminal answer for the request.
func (k Rejection) Respond(w http.ResponseWriter) {
	http.Error(w, k.Error(), k.StatusCode())
}
