package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
	"github.com/DeBrosOfficial/gossipnode/pkg/logging"
)

func restConfig(t *testing.T, cors *config.CorsConfig) config.RestConfig {
	t.Helper()
	listen, err := config.ParseHostPort("127.0.0.1:8443")
	require.NoError(t, err)
	return config.RestConfig{Listen: listen, Cors: cors}
}

func TestServerServesHandlerWithCORS(t *testing.T) {
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, &config.CorsConfig{}), okHandler())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s.Serve(ln)
	defer s.Stop()

	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/api/v0/node/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://wallet.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://wallet.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerWithoutCORS(t *testing.T) {
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, nil), okHandler())
	require.NoError(t, err)

	rec := get(t, s.Handler(), "https://wallet.example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerNilHandler(t *testing.T) {
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, nil), nil)
	require.NoError(t, err)

	rec := get(t, s.Handler(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerStopWithoutServe(t *testing.T) {
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, nil), okHandler())
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}

func TestNewServerBadBundle(t *testing.T) {
	cfg := restConfig(t, nil)
	missing := filepath.Join(t.TempDir(), "missing.p12")
	cfg.Pkcs12 = &missing

	_, err := NewServer(logging.NewNopLogger(), cfg, okHandler())
	assert.Error(t, err)
}

func TestLoadTLSConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTLSConfig(filepath.Join(dir, "absent.p12"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.p12")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pkcs12 bundle"), 0o600))
	_, err = LoadTLSConfig(garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode pkcs12 bundle")
}

func TestServerJSONErrors(t *testing.T) {
	sub := chi.NewRouter()
	sub.Get("/api/v0/node/status", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, nil), sub)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v0/node/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"no route for /missing"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v0/node/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

type brokenListener struct {
	net.Listener
}

func (brokenListener) Accept() (net.Conn, error) {
	return nil, errors.New("accept failed")
}

func TestServeFailureEndsStart(t *testing.T) {
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, nil), okHandler())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() { done <- s.serveUntil(context.Background(), brokenListener{ln}) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accept failed")
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntil kept blocking after the server failed")
	}
}

func TestServeUntilContextDone(t *testing.T) {
	s, err := NewServer(logging.NewNopLogger(), restConfig(t, nil), okHandler())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.serveUntil(ctx, ln))
}
