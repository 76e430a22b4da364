package negotiation

import (
	"crypto/sha1" // #nosec G505 -- key signing mandated by RFC 6455, not used for secrecy
	"encoding/base64"
)

// websocketGUID is the fixed signing suffix from RFC 6455 section 1.3.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey derives the Sec-WebSocket-Accept value for a client handshake
// key: base64(SHA-1(key + GUID)). The derivation is pure; the same key
// always signs to the same value. Getting this bit-exact is what proves to
// the client that the server understood the handshake.
func AcceptKey(key string) string {
	h := sha1.New() // #nosec G401
	h.Write([]byte(key))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
