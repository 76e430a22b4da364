package negotiation_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/websmith/wsaccept/negotiation"
)

func TestResponseWrite(t *testing.T) {
	response := &negotiation.Response{
		StatusCode: http.StatusSwitchingProtocols,
		Header: http.Header{
			"Connection":           {"upgrade"},
			"Upgrade":              {"websocket"},
			"Sec-WebSocket-Accept": {"s3pPLMBiTxaQ9kYGzzhZRbK+xOo="},
		},
	}

	var buf bytes.Buffer
	if err := response.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Connection: upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"Upgrade: websocket\r\n" +
		"\r\n"
	if buf.String() != want {
		t.Errorf("Write() produced:\n%q\nwant:\n%q", buf.String(), want)
	}
}
