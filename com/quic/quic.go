// Package quic adapts QUIC connections to the com transport seam. Each
// connection carries one bidirectional stream; framing and codec work
// on top of it unchanged.
package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/des256/deli-sub001/com"
)

// streamPreamble is the single byte the dialer writes on its stream.
// A QUIC stream only becomes visible to the peer's AcceptStream once
// data is sent, so the dialer must speak first even when the
// application's first operation is a receive.
const streamPreamble byte = 0x64

// handshakeTimeout bounds how long an accepted connection may take to
// present its stream and preamble before the listener gives up on it.
const handshakeTimeout = 5 * time.Second

var ErrBadPreamble = errors.New("quic: bad stream preamble")

type listener struct {
	l *quic.Listener
}

// Listen binds a QUIC listener usable with com.Serve. tlsConf must
// carry a certificate and the application's NextProtos.
func Listen(addr string, tlsConf *tls.Config, quicConf *quic.Config) (com.StreamListener, error) {
	l, err := quic.ListenAddr(addr, tlsConf, quicConf)
	if err != nil {
		return nil, err
	}
	return &listener{l: l}, nil
}

func (l *listener) Accept(ctx context.Context) (com.StreamConn, error) {
	conn, err := l.l.Accept(ctx)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()
	stream, err := conn.AcceptStream(streamCtx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("quic: accept stream: %w", err)
	}

	_ = stream.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var pb [1]byte
	if _, err := io.ReadFull(stream, pb[:]); err != nil {
		_ = conn.CloseWithError(0, "no preamble")
		return nil, fmt.Errorf("quic: read preamble: %w", err)
	}
	_ = stream.SetReadDeadline(time.Time{})
	if pb[0] != streamPreamble {
		_ = conn.CloseWithError(0, "bad preamble")
		return nil, ErrBadPreamble
	}

	return &streamConn{conn: conn, stream: stream}, nil
}

func (l *listener) Addr() net.Addr {
	return l.l.Addr()
}

func (l *listener) Close() error {
	return l.l.Close()
}

// Dial connects to a QUIC listener and opens the connection's stream,
// returning a com.StreamConn usable with com.NewClient.
func Dial(ctx context.Context, addr string, tlsConf *tls.Config, quicConf *quic.Config) (com.StreamConn, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, quicConf)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("quic: open stream: %w", err)
	}
	if _, err := stream.Write([]byte{streamPreamble}); err != nil {
		_ = conn.CloseWithError(0, "preamble write failed")
		return nil, fmt.Errorf("quic: write preamble: %w", err)
	}
	return &streamConn{conn: conn, stream: stream}, nil
}

type streamConn struct {
	conn   quic.Connection
	stream quic.Stream
}

func (c *streamConn) Read(p []byte) (int, error) {
	return c.stream.Read(p)
}

func (c *streamConn) Write(p []byte) (int, error) {
	return c.stream.Write(p)
}

func (c *streamConn) Close() error {
	_ = c.stream.Close()
	return c.conn.CloseWithError(0, "closed")
}

func (c *streamConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *streamConn) SetReadDeadline(t time.Time) error {
	return c.stream.SetReadDeadline(t)
}

func (c *streamConn) SetWriteDeadline(t time.Time) error {
	return c.stream.SetWriteDeadline(t)
}
