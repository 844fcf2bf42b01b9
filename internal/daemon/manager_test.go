// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func testDeps(h http.Handler) Deps {
	return Deps{Logger: zerolog.New(io.Discard), APIHandler: h}
}

func testServerConfig(addr string) ServerConfig {
	return ServerConfig{
		ListenAddr:      addr,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 2 * time.Second,
	}
}

func waitForAddr(t *testing.T, mgr Manager) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := mgr.Addr(); addr != "" {
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("manager did not bind a listener in time")
	return ""
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig(3000)
	if cfg.ListenAddr != ":3000" {
		t.Errorf("ListenAddr = %q, want :3000", cfg.ListenAddr)
	}
	if cfg.ShutdownTimeout <= 0 || cfg.ReadTimeout <= 0 {
		t.Errorf("expected positive timeouts, got %+v", cfg)
	}
}

func TestNewManager_MissingAPIHandler(t *testing.T) {
	_, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{Logger: zerolog.Nop()})
	if !errors.Is(err, ErrMissingAPIHandler) {
		t.Fatalf("NewManager() error = %v, want ErrMissingAPIHandler", err)
	}
}

func TestNewManager_MissingListenAddr(t *testing.T) {
	_, err := NewManager(testServerConfig(""), testDeps(http.NotFoundHandler()))
	if !errors.Is(err, ErrMissingListenAddr) {
		t.Fatalf("NewManager() error = %v, want ErrMissingListenAddr", err)
	}
}

func TestManager_StartStop_OK(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), testDeps(handler))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"db", "cache"} {
		mgr.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	addr := waitForAddr(t, mgr)
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	client.CloseIdleConnections()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "cache" || order[1] != "db" {
		t.Errorf("hooks ran in %v, want [cache db]", order)
	}

	if err := mgr.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() = %v, want nil", err)
	}
}

func TestManager_StartTwice(t *testing.T) {
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	waitForAddr(t, mgr)

	if err := mgr.Start(ctx); !errors.Is(err, ErrManagerAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrManagerAlreadyStarted", err)
	}
	cancel()
	<-done
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatal(err)
	}
	hookErr := errors.New("close failed")
	mgr.RegisterShutdownHook("broken", func(context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	waitForAddr(t, mgr)
	cancel()

	if err := <-done; !errors.Is(err, hookErr) {
		t.Fatalf("Start() = %v, want wrapped hook error", err)
	}
}

func TestManager_Shutdown_NotStarted(t *testing.T) {
	mgr, err := NewManager(testServerConfig("127.0.0.1:0"), testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.Shutdown(context.Background()); !errors.Is(err, ErrManagerNotStarted) {
		t.Errorf("Shutdown() = %v, want ErrManagerNotStarted", err)
	}
}

func TestManager_PropagatesListenErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	mgr, err := NewManager(testServerConfig(ln.Addr().String()), testDeps(http.NotFoundHandler()))
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("Start() on an occupied port returned nil")
	}
}
