package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxwatch/metrics"
	"github.com/sig-0/fxwatch/server/config"
	"github.com/sig-0/fxwatch/storage/memory"
)

func TestServer_New(t *testing.T) {
	t.Parallel()

	t.Run("invalid configuration", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.ListenAddress = "localhost"

		_, err := New(memory.NewStorage(), WithConfig(cfg))

		assert.ErrorIs(t, err, config.ErrInvalidListenAddress)
	})

	t.Run("routes", func(t *testing.T) {
		t.Parallel()

		m := metrics.New()
		m.ObserveRun(metrics.OutcomeWritten)

		s, err := New(memory.NewStorage(), WithMetrics(m))
		require.NoError(t, err)

		srv := httptest.NewServer(s.Handler())
		t.Cleanup(srv.Close)

		testTable := []struct {
			path   string
			status int
		}{
			{"/health", http.StatusOK},
			{"/openapi.yaml", http.StatusOK},
			{"/docs", http.StatusOK},
			{"/metrics", http.StatusOK},
			{"/v1/months", http.StatusOK},
			{"/v1/latest", http.StatusNotFound},
			{"/v1/series/2026-01", http.StatusNotFound},
			{"/v1/series/2026-01/daily", http.StatusNotFound},
			{"/v1/series/january", http.StatusBadRequest},
			{"/v1/unknown", http.StatusNotFound},
		}

		for _, testCase := range testTable {
			resp, err := http.Get(srv.URL + testCase.path)
			require.NoError(t, err)

			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			assert.Equal(t, testCase.status, resp.StatusCode, testCase.path)
		}
	})

	t.Run("no metrics route without metrics", func(t *testing.T) {
		t.Parallel()

		s, err := New(memory.NewStorage())
		require.NoError(t, err)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("CORS preflight", func(t *testing.T) {
		t.Parallel()

		s, err := New(memory.NewStorage())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodOptions, "/v1/months", http.NoBody)
		req.Header.Set("Origin", "https://fx.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	// Reserve a free port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := config.DefaultConfig()
	cfg.ListenAddress = addr

	s, err := New(memory.NewStorage(), WithConfig(cfg))
	require.NoError(t, err)

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	done := make(chan error, 1)

	go func() {
		done <- s.Serve(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancelFn()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
