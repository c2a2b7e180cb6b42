package com

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/des256/deli-sub001/codec"
)

// Message constrains the pointer form of a transportable type. Callers
// name only T; the pointer parameter is inferred.
type Message[T any] interface {
	codec.Value
	*T
}

// acceptRetryDelay spaces retries after a transient accept failure so
// the loop cannot spin on a persistent error.
const acceptRetryDelay = 100 * time.Millisecond

// Server owns a listening socket and one connection per remote client.
// Send broadcasts to every client with per-peer failure isolation;
// Recv merges messages arriving from all clients into one stream.
type Server[T any, P Message[T]] struct {
	lis  StreamListener
	opts options
	log  zerolog.Logger

	mu    sync.Mutex
	peers map[string]*serverPeer

	recv chan T

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	closed atomic.Bool
}

type serverPeer struct {
	id   string
	addr string
	conn StreamConn
}

// Listen binds a TCP address and starts accepting clients. Use ":0"
// for an ephemeral port and Addr to recover the bound address.
func Listen[T any, P Message[T]](addr string, opts ...Option) (*Server[T, P], error) {
	lis, err := ListenTCP(addr)
	if err != nil {
		return nil, err
	}
	return Serve[T, P](lis, opts...)
}

// Serve starts a server on an already-bound listener, for transports
// other than plain TCP.
func Serve[T any, P Message[T]](lis StreamListener, opts ...Option) (*Server[T, P], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	s := &Server[T, P]{
		lis:    lis,
		opts:   o,
		log:    o.logger,
		peers:  make(map[string]*serverPeer),
		recv:   make(chan T, o.recvBuffer),
		ctx:    ctx,
		cancel: cancel,
		group:  group,
	}

	s.group.Go(func() error {
		s.acceptLoop(ctx)
		return nil
	})

	s.log.Info().Stringer("addr", lis.Addr()).Msg("server listening")
	return s, nil
}

func (s *Server[T, P]) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.lis.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || s.closed.Load() {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.log.Warn().Err(err).Msg("accept error")
			select {
			case <-ctx.Done():
				return
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		p := &serverPeer{
			id:   uuid.NewString(),
			addr: conn.RemoteAddr().String(),
			conn: conn,
		}
		s.mu.Lock()
		s.peers[p.addr] = p
		s.mu.Unlock()

		s.log.Info().Str("peer", p.addr).Str("conn_id", p.id).Msg("client connected")
		s.group.Go(func() error {
			s.readPeer(ctx, p)
			return nil
		})
	}
}

// readPeer drains one client's read side into the shared receive
// channel. Any failure drops only this peer.
func (s *Server[T, P]) readPeer(ctx context.Context, p *serverPeer) {
	for {
		if s.opts.readTimeout > 0 {
			_ = p.conn.SetReadDeadline(time.Now().Add(s.opts.readTimeout))
		}
		var v T
		if err := ReadMessage(p.conn, P(&v), s.opts.maxMessageSize); err != nil {
			s.dropPeer(p, err)
			return
		}
		select {
		case s.recv <- v:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server[T, P]) dropPeer(p *serverPeer, err error) {
	s.mu.Lock()
	_, tracked := s.peers[p.addr]
	delete(s.peers, p.addr)
	s.mu.Unlock()

	_ = p.conn.Close()
	if !tracked || s.closed.Load() {
		return
	}
	if errors.Is(err, ErrConnectionClosed) {
		s.log.Info().Str("peer", p.addr).Str("conn_id", p.id).Msg("client disconnected")
	} else {
		s.log.Warn().Str("peer", p.addr).Str("conn_id", p.id).Err(err).Msg("dropping client")
	}
}

// Send broadcasts v to every connected client. The value is encoded
// once; a write failure drops the failing client and never aborts
// delivery to the rest. Send fails only when the server is closed, the
// context is done, or v itself cannot be framed.
func (s *Server[T, P]) Send(ctx context.Context, v *T) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	framed, err := frameMessage(P(v), s.opts.maxMessageSize)
	if err != nil {
		return err
	}

	var failed []*serverPeer
	s.mu.Lock()
	for _, p := range s.peers {
		if s.opts.writeTimeout > 0 {
			_ = p.conn.SetWriteDeadline(time.Now().Add(s.opts.writeTimeout))
		}
		if _, err := p.conn.Write(framed); err != nil {
			s.log.Warn().Str("peer", p.addr).Str("conn_id", p.id).Err(err).Msg("broadcast write failed")
			failed = append(failed, p)
		}
	}
	for _, p := range failed {
		delete(s.peers, p.addr)
	}
	s.mu.Unlock()

	for _, p := range failed {
		_ = p.conn.Close()
	}
	return nil
}

// Recv returns the next message received from any connected client.
// It suspends until a message arrives, ctx is done, or the server is
// closed. Peer failures are contained, never surfaced here.
func (s *Server[T, P]) Recv(ctx context.Context) (*T, error) {
	select {
	case v := <-s.recv:
		return &v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ctx.Done():
		// Deliver anything already queued before reporting closure.
		select {
		case v := <-s.recv:
			return &v, nil
		default:
			return nil, ErrServerClosed
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (s *Server[T, P]) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// Addr returns the bound local address.
func (s *Server[T, P]) Addr() net.Addr {
	return s.lis.Addr()
}

// Close stops accepting, closes every client connection, and waits for
// the server's goroutines. In-flight Recv calls resolve promptly. Safe
// to call more than once.
func (s *Server[T, P]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()
	err := s.lis.Close()

	s.mu.Lock()
	peers := make([]*serverPeer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.peers = make(map[string]*serverPeer)
	s.mu.Unlock()

	for _, p := range peers {
		_ = p.conn.Close()
	}
	_ = s.group.Wait()
	s.log.Info().Stringer("addr", s.lis.Addr()).Msg("server closed")
	return err
}
