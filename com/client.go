package com

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Client owns exactly one connection to a server for its lifetime.
// Unlike the Server, every failure on the connection propagates to the
// caller; there is no other peer to fall back on.
type Client[T any, P Message[T]] struct {
	conn StreamConn
	opts options
	log  zerolog.Logger

	// The read and write sides are independent; each gets its own lock
	// so a blocked Recv never delays Send.
	rmu sync.Mutex
	wmu sync.Mutex

	closed atomic.Bool
}

// Dial connects to a server's TCP address.
func Dial[T any, P Message[T]](ctx context.Context, addr string, opts ...Option) (*Client[T, P], error) {
	conn, err := DialTCP(ctx, addr)
	if err != nil {
		return nil, err
	}
	return NewClient[T, P](conn, opts...), nil
}

// NewClient wraps an already-established connection, for transports
// other than plain TCP. The client takes ownership of conn.
func NewClient[T any, P Message[T]](conn StreamConn, opts ...Option) *Client[T, P] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client[T, P]{
		conn: conn,
		opts: o,
		log:  o.logger,
	}
	c.log.Debug().Stringer("addr", conn.RemoteAddr()).Msg("client connected")
	return c
}

// Send encodes, frames, and writes v. It fails with an I/O error when
// the connection is down and with ErrClientClosed after Close.
func (c *Client[T, P]) Send(ctx context.Context, v *T) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.applyDeadline(ctx, c.opts.writeTimeout, c.conn.SetWriteDeadline)
	if err := WriteMessage(c.conn, P(v), c.opts.maxMessageSize); err != nil {
		if c.closed.Load() {
			return ErrClientClosed
		}
		return err
	}
	return nil
}

// Recv reads and decodes the next message, suspending until a full
// frame arrives. An orderly peer shutdown is ErrConnectionClosed,
// distinguishable from a decode failure.
func (c *Client[T, P]) Recv(ctx context.Context) (*T, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.rmu.Lock()
	defer c.rmu.Unlock()
	c.applyDeadline(ctx, c.opts.readTimeout, c.conn.SetReadDeadline)
	var v T
	if err := ReadMessage(c.conn, P(&v), c.opts.maxMessageSize); err != nil {
		if c.closed.Load() {
			return nil, ErrClientClosed
		}
		return nil, err
	}
	return &v, nil
}

// applyDeadline arms the socket deadline from the tighter of the
// context deadline and the configured timeout. Cancellation without a
// deadline is resolved by Close, which unblocks both sides.
func (c *Client[T, P]) applyDeadline(ctx context.Context, timeout time.Duration, set func(time.Time) error) {
	deadline, ok := ctx.Deadline()
	if timeout > 0 {
		d := time.Now().Add(timeout)
		if !ok || d.Before(deadline) {
			deadline, ok = d, true
		}
	}
	if ok {
		_ = set(deadline)
	} else {
		_ = set(time.Time{})
	}
}

// RemoteAddr returns the server's address.
func (c *Client[T, P]) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close shuts down both sides of the connection. The peer observes a
// connection failure; in-flight Send/Recv resolve promptly with
// ErrClientClosed. Safe to call more than once.
func (c *Client[T, P]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}
