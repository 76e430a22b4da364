package channel

import (
	"github.com/gobwas/ws"
)

// Message is a single WebSocket message: an opcode plus its payload. Control
// messages (ping, pong, close) travel through the same type as data
// messages, mirroring the wire. A Message is immutable once constructed.
type Message struct {
	Op      ws.OpCode
	Payload []byte
}

func Text(s string) Message {
	return Message{Op: ws.OpText, Payload: []byte(s)}
}

func Binary(p []byte) Message {
	return Message{Op: ws.OpBinary, Payload: p}
}

func Ping(p []byte) Message {
	return Message{Op: ws.OpPing, Payload: p}
}

func Pong(p []byte) Message {
	return Message{Op: ws.OpPong, Payload: p}
}

// Close builds a close message. A zero status produces a bare close frame
// carrying no code or reason.
func Close(code ws.StatusCode, reason string) Message {
	if code == 0 {
		return Message{Op: ws.OpClose}
	}
	return Message{Op: ws.OpClose, Payload: ws.NewCloseFrameBody(code, reason)}
}

// CloseStatus parses the status code and reason out of a close message.
// Bare close frames and non-close messages report StatusNoStatusRcvd.
func (m Message) CloseStatus() (ws.StatusCode, string) {
	if m.Op != ws.OpClose || len(m.Payload) == 0 {
		return ws.StatusNoStatusRcvd, ""
	}
	return ws.ParseCloseFrameData(m.Payload)
}

// IsData reports whether the message is a text or binary message.
func (m Message) IsData() bool {
	return m.Op == ws.OpText || m.Op == ws.OpBinary
}

// IsControl reports whether the message is a ping, pong or close message.
func (m Message) IsControl() bool {
	return m.Op.IsControl()
}
