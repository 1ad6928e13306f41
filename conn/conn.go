// Package conn implements per-client connection state: a read buffer
// fed by the socket, a write buffer draining to it, and the liveness
// flag that the event loop (package server) watches.
//
// Grounded on original_source/Connection.{hpp,cpp}, translated from
// its non-blocking-socket-plus-manual-EAGAIN-loop model into Go's
// idiom: net.Conn.Read/Write already block the calling goroutine
// until data is available or the write completes, so a dedicated
// goroutine per connection (the teacher's own SSH server in
// bin/server/main.go accepts one goroutine per session) plays the
// role the original's I/O-readiness poller plays — ReadMore and Flush
// below are the direct translations of read_ready/write_ready.
package conn

import (
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Connection is one client's socket plus its buffering state. It is
// not safe for concurrent use: a single goroutine owns a Connection's
// I/O (see package server), matching spec §5's resource-ownership
// model.
type Connection struct {
	id       string
	socket   net.Conn
	readBuf  []byte
	writeBuf []byte
	closed   bool
}

// New wraps socket, tagging it with a session id used only in log
// lines — never part of the wire protocol.
func New(socket net.Conn) *Connection {
	return &Connection{
		id:     uuid.NewString(),
		socket: socket,
	}
}

// ID returns the connection's session id, for logging/audit purposes.
func (c *Connection) ID() string {
	return c.id
}

// RemoteAddr returns the underlying socket's remote address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.socket.RemoteAddr()
}

// Closed reports whether the connection has observed peer-close or a
// fatal I/O error.
func (c *Connection) Closed() bool {
	return c.closed
}

const readChunkSize = 4096

// ReadMore blocks until the socket has at least one more byte, EOF,
// or an error, then appends whatever arrived to the read buffer. It
// is the translation of the original's read_ready: in Go, the
// blocking Read call itself is the readiness wait, supplied by the
// runtime's netpoller instead of a hand-rolled EAGAIN loop. A peer
// close (io.EOF) sets Closed() and returns a nil error — callers
// distinguish "no more data, ever" from "no more data, try again" by
// checking Closed() rather than by inspecting err.
func (c *Connection) ReadMore() error {
	buf := make([]byte, readChunkSize)
	n, err := c.socket.Read(buf)
	if n > 0 {
		c.readBuf = append(c.readBuf, buf[:n]...)
	}
	if err != nil {
		c.closed = true
		if err == io.EOF {
			return nil
		}
		return errors.WithStack(err)
	}
	return nil
}

// ReadBuffer returns the unconsumed prefix of data read so far, for
// the RESP parser to scan. The caller must not retain or mutate the
// returned slice past the next ReadMore/Consume call.
func (c *Connection) ReadBuffer() []byte {
	return c.readBuf
}

// Consume advances the read buffer past n bytes, after a successful
// parse.
func (c *Connection) Consume(n int) {
	if n >= len(c.readBuf) {
		c.readBuf = c.readBuf[:0]
		return
	}
	c.readBuf = c.readBuf[n:]
}

// DiscardReadBuffer drops every unconsumed byte, used after a
// Malformed parse result (spec §9's protocol-error handling: clear
// the read buffer, keep the connection open).
func (c *Connection) DiscardReadBuffer() {
	c.readBuf = c.readBuf[:0]
}

// Enqueue appends reply bytes to the write buffer.
func (c *Connection) Enqueue(b []byte) {
	c.writeBuf = append(c.writeBuf, b...)
}

// Flush attempts to drain the write buffer to the socket. Go's
// net.Conn.Write already loops internally until every byte is
// written or a fatal error occurs, so — unlike the original's
// manual "erase what was sent, keep the rest" bookkeeping — a single
// Write call either empties the buffer or leaves the connection
// closed; there is no partial-write state to carry between calls.
func (c *Connection) Flush() error {
	if len(c.writeBuf) == 0 {
		return nil
	}
	_, err := c.socket.Write(c.writeBuf)
	c.writeBuf = c.writeBuf[:0]
	if err != nil {
		c.closed = true
		return errors.WithStack(err)
	}
	return nil
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	c.closed = true
	return c.socket.Close()
}
