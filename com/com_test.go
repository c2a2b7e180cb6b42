package com

import (
	"context"
	"testing"
	"time"

	"github.com/des256/deli-sub001/codec"
	"github.com/des256/deli-sub001/internal/testutil/testlog"
)

// testMsg is the message type the transport tests move around.
type testMsg struct {
	ID   uint64
	Body string
}

func (m *testMsg) Encode(b *codec.Buffer) {
	b.PutU64(m.ID)
	b.PutString(m.Body)
}

func (m *testMsg) Decode(r *codec.Reader) error {
	var err error
	if m.ID, err = r.U64(); err != nil {
		return err
	}
	if m.Body, err = r.String(); err != nil {
		return err
	}
	return nil
}

func newTestServer(t *testing.T, opts ...Option) *Server[testMsg, *testMsg] {
	t.Helper()
	testlog.Start(t)
	srv, err := Listen[testMsg]("127.0.0.1:0", opts...)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func dialTestServer(t *testing.T, srv *Server[testMsg, *testMsg], opts ...Option) *Client[testMsg, *testMsg] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial[testMsg](ctx, srv.Addr().String(), opts...)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
