package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdown_ReverseOrder(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Config{Port: 0, ShutdownTimeout: time.Second}, discardLogger())

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownFunc {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	srv.OnShutdown("database", record("database"))
	srv.OnShutdown("redis", record("redis"))

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	want := []string{"redis", "database"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("shutdown order = %v, want %v", order, want)
	}
}

func TestShutdown_ReturnsFirstErrorAndStopsAll(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Config{ShutdownTimeout: time.Second}, discardLogger())

	errBoom := errors.New("boom")
	called := 0
	srv.OnShutdown("first", func(ctx context.Context) error {
		called++
		return nil
	})
	srv.OnShutdown("second", func(ctx context.Context) error {
		called++
		return errBoom
	})

	err := srv.Shutdown(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("expected errBoom, got %v", err)
	}
	if called != 2 {
		t.Errorf("expected both components stopped, got %d", called)
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := New(handler, Config{ShutdownTimeout: time.Second}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
