package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/dmxemu/internal/wire"
)

func TestTestFrame(t *testing.T) {
	f := testFrame(3, 300)
	if len(f) != 300 {
		t.Fatalf("len = %d, want 300", len(f))
	}
	if f[0] != 3 || f[252] != 255 || f[253] != 0 {
		t.Errorf("pattern = %d %d %d", f[0], f[252], f[253])
	}
}

func TestRun_SendsFrames(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	got := make(chan [][]byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := wire.NewReader(conn, 512)
		var frames [][]byte
		for {
			f, err := r.ReadFrame()
			if err != nil {
				break
			}
			frames = append(frames, f)
		}
		got <- frames
	}()

	cfg := clientConfig{
		Host:     "127.0.0.1",
		Port:     ln.Addr().(*net.TCPAddr).Port,
		Count:    4,
		Channels: 16,
		Interval: time.Millisecond,
	}
	if err := run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	select {
	case frames := <-got:
		if len(frames) != 4 {
			t.Fatalf("received %d frames, want 4", len(frames))
		}
		for i, f := range frames {
			if !bytes.Equal(f, testFrame(i, 16)) {
				t.Errorf("frame %d = %v", i, f)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive frames")
	}
}

func TestRun_ConnectFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := clientConfig{Host: "127.0.0.1", Port: port, Count: 1, Channels: 1}
	if err := run(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("run() expected connect error")
	}
}

func TestRun_InvalidChannels(t *testing.T) {
	if err := run(context.Background(), clientConfig{Channels: 0}, zerolog.Nop()); err == nil {
		t.Fatal("run() expected error for zero channels")
	}
}
