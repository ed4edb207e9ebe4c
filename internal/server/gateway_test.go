package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	hub, err := NewHub(&stubStore{rooms: []string{"public"}}, testBanner)
	require.NoError(t, err)

	go hub.Run()
	t.Cleanup(func() { _ = hub.Shutdown(2 * time.Second) })

	return NewGateway(hub)
}

func TestHealthHandler(t *testing.T) {
	gateway := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	gateway.HealthHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "roomchat server is running!", rr.Body.String())
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
}

func TestWebSocketHandlerRejectsNonGET(t *testing.T) {
	gateway := newTestGateway(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/ws", nil)
		rr := httptest.NewRecorder()

		gateway.WebSocketHandler(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "method %s", method)
	}
}

func TestWebSocketHandlerRejectsDisallowedOrigin(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(&Config{AllowedOrigins: []string{"http://localhost:8080"}})

	gateway := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	rr := httptest.NewRecorder()

	gateway.WebSocketHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestTestPageHandler(t *testing.T) {
	gateway := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	gateway.TestPageHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "new WebSocket")
}

func TestRoutes(t *testing.T) {
	gateway := newTestGateway(t)
	mux := gateway.Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "roomchat server is running!", rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateServerTimeouts(t *testing.T) {
	t.Parallel()

	srv := CreateServer(":8080", http.NewServeMux())

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	// WriteTimeout stays zero so long-lived WebSocket writes are not cut off.
	assert.Equal(t, time.Duration(0), srv.WriteTimeout)
}
