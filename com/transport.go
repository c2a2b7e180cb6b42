package com

import (
	"context"
	"io"
	"net"
	"time"
)

// StreamConn is one established full-duplex byte-stream connection.
// The read side and write side share no state and may be driven by
// different goroutines concurrently.
type StreamConn interface {
	io.Reader
	io.Writer
	io.Closer
	RemoteAddr() net.Addr
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// StreamListener accepts StreamConns. Close unblocks a pending Accept.
type StreamListener interface {
	Accept(ctx context.Context) (StreamConn, error)
	Addr() net.Addr
	Close() error
}

type tcpListener struct {
	l *net.TCPListener
}

// ListenTCP binds addr and returns a TCP-backed StreamListener.
func ListenTCP(addr string) (StreamListener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}
	l, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}
	return &tcpListener{l: l}, nil
}

func (t *tcpListener) Accept(ctx context.Context) (StreamConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := t.l.AcceptTCP()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	_ = conn.SetNoDelay(true)
	return conn, nil
}

func (t *tcpListener) Addr() net.Addr {
	return t.l.Addr()
}

func (t *tcpListener) Close() error {
	return t.l.Close()
}

// DialTCP connects to addr and returns a TCP-backed StreamConn.
func DialTCP(ctx context.Context, addr string) (StreamConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tcpConn := conn.(*net.TCPConn)
	_ = tcpConn.SetNoDelay(true)
	return tcpConn, nil
}
