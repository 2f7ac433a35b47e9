package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const versionPayload = `{
	"Browser": "HeadlessChrome/124.0.6367.60",
	"Protocol-Version": "1.3",
	"User-Agent": "Mozilla/5.0 HeadlessChrome/124.0.6367.60",
	"V8-Version": "12.4.254.12",
	"WebKit-Version": "537.36",
	"webSocketDebuggerUrl": "ws://127.0.0.1:9222/devtools/browser/0b7c5f1e"
}`

func newDevToolsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDevToolsClientVersion(t *testing.T) {
	srv := newDevToolsServer(t, http.StatusOK, versionPayload)
	c := NewDevToolsClient(srv.URL+"/", time.Second, zap.NewNop())

	version, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HeadlessChrome/124.0.6367.60", version.Browser)
	assert.Equal(t, "1.3", version.ProtocolVersion)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	wsURL, err := c.WebSocketURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/0b7c5f1e", wsURL)
}

func TestDevToolsClientErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := newDevToolsServer(t, http.StatusInternalServerError, "boom")
		_, err := NewDevToolsClient(srv.URL, 0, zap.NewNop()).Version(context.Background())
		assert.ErrorContains(t, err, "failed with status 500")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newDevToolsServer(t, http.StatusOK, "{not json")
		_, err := NewDevToolsClient(srv.URL, time.Second, zap.NewNop()).Version(context.Background())
		assert.ErrorContains(t, err, "failed to unmarshal")
	})

	t.Run("no websocket url", func(t *testing.T) {
		srv := newDevToolsServer(t, http.StatusOK, `{"Browser":"Chrome"}`)
		_, err := NewDevToolsClient(srv.URL, time.Second, zap.NewNop()).WebSocketURL(context.Background())
		assert.ErrorContains(t, err, "no webSocketDebuggerUrl")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := newDevToolsServer(t, http.StatusOK, versionPayload)
		url := srv.URL
		srv.Close()
		_, err := NewDevToolsClient(url, time.Second, zap.NewNop()).Version(context.Background())
		assert.Error(t, err)
	})
}
