package quic

import (
	"context"
	"testing"
	"time"

	"github.com/des256/deli-sub001/codec"
	"github.com/des256/deli-sub001/com"
	"github.com/des256/deli-sub001/internal/testutil/tlstest"
)

const testProto = "deli-test"

type testMsg struct {
	Seq  uint64
	Body string
}

func (m *testMsg) Encode(b *codec.Buffer) {
	b.PutU64(m.Seq)
	b.PutString(m.Body)
}

func (m *testMsg) Decode(r *codec.Reader) error {
	var err error
	if m.Seq, err = r.U64(); err != nil {
		return err
	}
	if m.Body, err = r.String(); err != nil {
		return err
	}
	return nil
}

func TestQUICRoundTrip(t *testing.T) {
	serverTLS, clientTLS := tlstest.Pair(t, testProto)

	lis, err := Listen("127.0.0.1:0", serverTLS, nil)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv, err := com.Serve[testMsg](lis)
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := Dial(ctx, srv.Addr().String(), clientTLS, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client := com.NewClient[testMsg](conn)
	defer client.Close()

	up := testMsg{Seq: 1, Body: "over quic"}
	if err := client.Send(ctx, &up); err != nil {
		t.Fatalf("client send: %v", err)
	}
	got, err := srv.Recv(ctx)
	if err != nil {
		t.Fatalf("server recv: %v", err)
	}
	if *got != up {
		t.Fatalf("uplink mismatch: %+v", got)
	}

	down := testMsg{Seq: 2, Body: "back again"}
	if err := srv.Send(ctx, &down); err != nil {
		t.Fatalf("server send: %v", err)
	}
	back, err := client.Recv(ctx)
	if err != nil {
		t.Fatalf("client recv: %v", err)
	}
	if *back != down {
		t.Fatalf("downlink mismatch: %+v", back)
	}
}

func TestQUICServerSpeaksFirst(t *testing.T) {
	// The preamble makes the dialer's stream visible before any
	// application data flows, so a server-initiated message must reach
	// a client that never sent one.
	serverTLS, clientTLS := tlstest.Pair(t, testProto)

	lis, err := Listen("127.0.0.1:0", serverTLS, nil)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv, err := com.Serve[testMsg](lis)
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := Dial(ctx, srv.Addr().String(), clientTLS, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client := com.NewClient[testMsg](conn)
	defer client.Close()

	deadline := time.Now().Add(5 * time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("listener never surfaced the connection")
		}
		time.Sleep(5 * time.Millisecond)
	}

	msg := testMsg{Seq: 9, Body: "unprompted"}
	if err := srv.Send(ctx, &msg); err != nil {
		t.Fatalf("server send: %v", err)
	}
	got, err := client.Recv(ctx)
	if err != nil {
		t.Fatalf("client recv: %v", err)
	}
	if *got != msg {
		t.Fatalf("mismatch: %+v", got)
	}
}
