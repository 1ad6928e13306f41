// Package integration_test drives a real redikv server over a real
// TCP socket, the black-box counterpart to server's own package-level
// tests. Grounded on integration_test/server.go's TestServer-wraps-a-
// real-server-on-a-random-port shape, adapted from SSH to RESP.
package integration_test

import (
	"context"
	"log"
	"net"
	"os"
	"time"

	"github.com/zond/redikv/server"
)

// TestServer owns a running redikv server bound to a random port, and
// the temp directory its snapshot lives in.
type TestServer struct {
	*server.Server
	addr   string
	tmpDir string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTestServer starts a redikv server on a free 127.0.0.1 port.
func NewTestServer() (*TestServer, error) {
	tmpDir, err := os.MkdirTemp("", "redikv-integration-*")
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	addr := listener.Addr().String()
	listener.Close()

	cfg := server.DefaultConfig()
	cfg.Dir = tmpDir
	cfg.Addr = addr
	cfg.CronInterval = 10 * time.Millisecond

	srv := server.New(cfg, log.New(os.Stderr, "redikv-integration: ", log.LstdFlags))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Start(ctx)
		close(done)
	}()

	ts := &TestServer{
		Server: srv,
		addr:   addr,
		tmpDir: tmpDir,
		cancel: cancel,
		done:   done,
	}
	if err := ts.waitUntilUp(5 * time.Second); err != nil {
		ts.Close()
		return nil, err
	}
	return ts, nil
}

// Addr returns the address the server is listening on.
func (ts *TestServer) Addr() string { return ts.addr }

// waitUntilUp blocks until a bare TCP connect succeeds, so callers
// don't race the accept loop's startup.
func (ts *TestServer) waitUntilUp(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", ts.addr, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	return lastErr
}

// Close signals the server to shut down, waits for it, and removes
// its temp directory.
func (ts *TestServer) Close() {
	ts.cancel()
	select {
	case <-ts.done:
	case <-time.After(5 * time.Second):
	}
	os.RemoveAll(ts.tmpDir)
}
