// Package channel provides a message-oriented view of an upgraded WebSocket
// connection. It owns the raw connection exclusively and drives the
// gobwas/ws frame codec underneath; callers exchange whole messages and
// never see framing, masking or fragmentation.
package channel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const (
	DefaultMaxMessageSize = 64 << 20
	DefaultMaxFrameSize   = 16 << 20
)

var (
	// ErrClosed is returned by Send once the channel is closing or closed.
	ErrClosed = errors.New("channel: closed")
	// ErrFrameTooLarge is returned when an inbound frame exceeds the
	// configured frame limit. The connection is torn down.
	ErrFrameTooLarge = errors.New("channel: frame exceeds configured limit")
	// ErrMessageTooLarge is returned when an assembled inbound message
	// exceeds the configured message limit. The connection is torn down.
	ErrMessageTooLarge = errors.New("channel: message exceeds configured limit")
)

// Options carries the frame codec limits negotiated for a channel.
type Options struct {
	// MaxSendQueue bounds the outbound message queue. Zero sends every
	// message directly to the connection under a write lock.
	MaxSendQueue int
	// MaxMessageSize caps an assembled inbound message. Defaults to 64 MiB.
	MaxMessageSize int64
	// MaxFrameSize caps a single inbound frame. Defaults to 16 MiB.
	MaxFrameSize int64
	// AcceptUnmaskedFrames drops the server-side requirement that client
	// frames are masked. Every other header check (reserved bits, control
	// frame rules, continuation rules) stays in force. Off by default, as
	// RFC 6455 demands.
	AcceptUnmaskedFrames bool
}

func (o Options) withDefaults() Options {
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = DefaultMaxMessageSize
	}
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = DefaultMaxFrameSize
	}
	return o
}

// Channel is a bidirectional message stream over one WebSocket connection.
//
// At most one goroutine may call Receive and one may call Send at any time;
// the two directions are independent. Close requires sole ownership of the
// whole channel. A Send that is abandoned mid-write leaves the wire in an
// indeterminate state and is reported as an error by later operations, never
// papered over.
type Channel struct {
	conn     net.Conn
	protocol string
	opts     Options
	state    ws.State

	reader *wsutil.Reader

	writeMu sync.Mutex

	stateMu sync.Mutex
	closing bool // close frame sent or queued by us
	closed  bool // close handshake finished or connection torn down
	failure error

	done     chan struct{}
	doneOnce sync.Once

	sendQ        chan Message
	sendStop     chan struct{}
	sendStopOnce sync.Once
	sendLoopDone chan struct{}
}

// NewServer wraps an upgraded connection in a server-role channel: inbound
// frames must be masked (unless opts says otherwise), outbound frames are
// not.
func NewServer(conn net.Conn, protocol string, opts Options) *Channel {
	return newChannel(conn, protocol, opts, ws.StateServerSide)
}

// NewClient wraps a dialed connection in a client-role channel: outbound
// frames are masked, inbound frames must not be.
func NewClient(conn net.Conn, protocol string, opts Options) *Channel {
	return newChannel(conn, protocol, opts, ws.StateClientSide)
}

func newChannel(conn net.Conn, protocol string, opts Options, state ws.State) *Channel {
	opts = opts.withDefaults()
	c := &Channel{
		conn:     conn,
		protocol: protocol,
		opts:     opts,
		state:    state,
		done:     make(chan struct{}),
	}
	readState := state
	if opts.AcceptUnmaskedFrames {
		// Clearing the role bit disables only the masking requirement;
		// ws.CheckHeader keeps validating everything else.
		readState = readState.Clear(ws.StateServerSide)
	}
	c.reader = &wsutil.Reader{
		Source:         conn,
		State:          readState,
		CheckUTF8:      true,
		MaxFrameSize:   opts.MaxFrameSize,
		OnIntermediate: c.onIntermediate,
	}
	if opts.MaxSendQueue > 0 {
		c.sendQ = make(chan Message, opts.MaxSendQueue)
		c.sendStop = make(chan struct{})
		c.sendLoopDone = make(chan struct{})
		go c.sendLoop()
	}
	return c
}

// Protocol returns the negotiated subprotocol, empty when none was selected.
// Stable for the channel's lifetime.
func (c *Channel) Protocol() string {
	return c.protocol
}

// NetConn exposes the underlying connection for address introspection. The
// channel remains its owner; reading or writing it corrupts the stream.
func (c *Channel) NetConn() net.Conn {
	return c.conn
}

// Receive blocks until the next complete message arrives and returns it in
// wire order. It returns io.EOF exactly at end-of-stream. Any protocol
// violation (oversized frame or message, bad header) is fatal: the
// connection is torn down and the same error is returned from then on.
//
// Pings are answered with a pong automatically and still surfaced. A close
// from the peer is echoed, surfaced once, and followed by io.EOF.
func (c *Channel) Receive() (Message, error) {
	if err := c.receiveState(); err != nil {
		return Message{}, err
	}

	hdr, err := c.reader.NextFrame()
	if err != nil {
		return Message{}, c.failRead(err)
	}

	if hdr.OpCode.IsControl() {
		return c.readControl(hdr)
	}

	payload, err := c.readPayload()
	if err != nil {
		return Message{}, err
	}
	return Message{Op: hdr.OpCode, Payload: payload}, nil
}

// Send writes or enqueues one message. With a bounded send queue configured
// it blocks while the queue is full; otherwise it blocks until the message
// is on the wire. It fails once the channel is closing or the connection
// broke.
func (c *Channel) Send(m Message) error {
	if err := c.sendState(); err != nil {
		return err
	}
	if c.sendQ != nil {
		select {
		case c.sendQ <- m:
			return nil
		case <-c.done:
			return c.sendStateOr(ErrClosed)
		}
	}
	if err := c.write(m); err != nil {
		return c.fail(err)
	}
	return nil
}

// Close performs the closing handshake: it flushes any queued outbound
// messages, sends a bare close frame if one was not already sent, waits for
// the peer's close frame or the end of the stream, and tears the connection
// down. It is the only sanctioned way to end a conversation cleanly, and
// requires sole ownership of the channel.
func (c *Channel) Close() error {
	c.stateMu.Lock()
	if c.closed {
		c.stateMu.Unlock()
		return nil
	}
	alreadyClosing := c.closing
	c.closing = true
	c.stateMu.Unlock()

	// Reading continues while the remaining frames go out: the peer may be
	// blocked writing its own frames, and the handshake cannot finish until
	// someone consumes them.
	drained := make(chan struct{})
	go func() {
		c.drainUntilClose()
		close(drained)
	}()

	writeErr := c.flushSendQueue()
	if writeErr == nil && !alreadyClosing {
		writeErr = c.write(Close(0, ""))
	}
	if writeErr == nil {
		<-drained
	}

	c.stateMu.Lock()
	c.closed = true
	c.stateMu.Unlock()
	c.signalDone()

	closeErr := c.conn.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// flushSendQueue stops the send pump and writes out every message that was
// accepted before the channel began closing, preserving order.
func (c *Channel) flushSendQueue() error {
	if c.sendQ == nil {
		return nil
	}
	c.sendStopOnce.Do(func() { close(c.sendStop) })
	<-c.sendLoopDone
	for {
		select {
		case m := <-c.sendQ:
			if err := c.write(m); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Channel) drainUntilClose() {
	for {
		hdr, err := c.reader.NextFrame()
		if err != nil {
			return
		}
		if _, err := io.Copy(io.Discard, c.reader); err != nil {
			return
		}
		if hdr.OpCode == ws.OpClose {
			return
		}
	}
}

// write puts one whole frame on the wire with a single conn write, so a
// blocked peer never holds us mid-frame between header and payload.
func (c *Channel) write(m Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	var buf bytes.Buffer
	if err := wsutil.WriteMessage(&buf, c.state, m.Op, m.Payload); err != nil {
		return err
	}
	_, err := c.conn.Write(buf.Bytes())
	return err
}

func (c *Channel) sendLoop() {
	defer close(c.sendLoopDone)
	for {
		select {
		case <-c.done:
			return
		case <-c.sendStop:
			return
		case m := <-c.sendQ:
			if err := c.write(m); err != nil {
				_ = c.fail(err)
				return
			}
		}
	}
}

func (c *Channel) readPayload() ([]byte, error) {
	limit := c.opts.MaxMessageSize
	payload, err := io.ReadAll(io.LimitReader(c.reader, limit+1))
	if err != nil {
		return nil, c.failRead(err)
	}
	if int64(len(payload)) > limit {
		return nil, c.fail(ErrMessageTooLarge)
	}
	return payload, nil
}

func (c *Channel) readControl(hdr ws.Header) (Message, error) {
	payload, err := io.ReadAll(c.reader)
	if err != nil {
		return Message{}, c.failRead(err)
	}

	switch hdr.OpCode {
	case ws.OpPing:
		// RFC 6455: a pong must carry the ping's payload.
		if err := c.write(Pong(payload)); err != nil {
			return Message{}, c.fail(err)
		}
		return Message{Op: ws.OpPing, Payload: payload}, nil
	case ws.OpPong:
		return Message{Op: ws.OpPong, Payload: payload}, nil
	case ws.OpClose:
		c.peerClosed(payload)
		return Message{Op: ws.OpClose, Payload: payload}, nil
	}
	return Message{}, c.fail(fmt.Errorf("channel: unexpected control opcode %v", hdr.OpCode))
}

// onIntermediate handles control frames that arrive between fragments of a
// larger message.
func (c *Channel) onIntermediate(hdr ws.Header, rd io.Reader) error {
	payload, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	switch hdr.OpCode {
	case ws.OpPing:
		return c.write(Pong(payload))
	case ws.OpClose:
		c.peerClosed(payload)
		return io.EOF
	}
	return nil
}

// peerClosed records the peer's close frame, echoing it if we had not sent
// our own close yet, and tears the connection down.
func (c *Channel) peerClosed(payload []byte) {
	c.stateMu.Lock()
	alreadyClosing := c.closing
	c.closing = true
	c.closed = true
	c.stateMu.Unlock()
	c.signalDone()

	if !alreadyClosing {
		code, _ := Message{Op: ws.OpClose, Payload: payload}.CloseStatus()
		if code == ws.StatusNoStatusRcvd {
			_ = c.write(Close(0, ""))
		} else {
			_ = c.write(Close(code, ""))
		}
	}
	_ = c.conn.Close()
}

func (c *Channel) receiveState() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.failure != nil {
		return c.failure
	}
	if c.closed {
		return io.EOF
	}
	return nil
}

func (c *Channel) sendState() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.failure != nil {
		return c.failure
	}
	if c.closing || c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Channel) sendStateOr(fallback error) error {
	if err := c.sendState(); err != nil {
		return err
	}
	return fallback
}

// fail poisons the channel with a terminal error and tears the connection
// down. The first error wins.
func (c *Channel) fail(err error) error {
	c.stateMu.Lock()
	if c.failure == nil {
		c.failure = err
	} else {
		err = c.failure
	}
	c.closed = true
	c.stateMu.Unlock()
	c.signalDone()
	_ = c.conn.Close()
	return err
}

// failRead maps a read error to the channel contract: a plain end of stream
// becomes io.EOF, the codec's frame limit maps to ErrFrameTooLarge, and
// everything else poisons the channel.
func (c *Channel) failRead(err error) error {
	if errors.Is(err, wsutil.ErrFrameTooLarge) {
		return c.fail(ErrFrameTooLarge)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		c.stateMu.Lock()
		alreadyFailed := c.failure
		c.closed = true
		c.stateMu.Unlock()
		c.signalDone()
		_ = c.conn.Close()
		if alreadyFailed != nil {
			return alreadyFailed
		}
		return io.EOF
	}
	return c.fail(err)
}

func (c *Channel) signalDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}
