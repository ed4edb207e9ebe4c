// Package testhelpers provides common utilities for exercising the roomchat
// server in integration tests: starting a full server stack on ephemeral
// ports and driving the line protocol over TCP or WebSocket.
package testhelpers

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/roomstore"
	"github.com/Tyrowin/roomchat/internal/server"
)

// Banner is the greeting the test server is started with.
const Banner = "Welcome to the XYZ chat server"

// TestServer bundles a running hub, TCP acceptor, and WebSocket gateway,
// all bound to ephemeral ports and torn down with the test.
type TestServer struct {
	Hub      *server.Hub
	Acceptor *server.Acceptor
	HTTP     *httptest.Server
}

// StartServer boots the full server stack backed by a file room store in a
// temporary directory. Everything is cleaned up when the test ends.
func StartServer(t *testing.T) *TestServer {
	t.Helper()

	store, err := roomstore.NewFileStore(filepath.Join(t.TempDir(), "rooms.yaml"))
	require.NoError(t, err)

	hub, err := server.NewHub(store, Banner)
	require.NoError(t, err)
	go hub.Run()

	acceptor, err := server.NewAcceptor("127.0.0.1:0", hub)
	require.NoError(t, err)
	go func() { _ = acceptor.Run() }()

	httpServer := httptest.NewServer(server.NewGateway(hub).Routes())

	t.Cleanup(func() {
		httpServer.Close()
		_ = acceptor.Close()
		_ = hub.Shutdown(2 * time.Second)
	})

	return &TestServer{Hub: hub, Acceptor: acceptor, HTTP: httpServer}
}

// ChatAddr returns the TCP address of the line protocol listener.
func (s *TestServer) ChatAddr() string { return s.Acceptor.Addr().String() }

// WebSocketURL returns the ws:// URL of the gateway endpoint.
func (s *TestServer) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(s.HTTP.URL, "http") + "/ws"
}

// LineClient drives the newline-framed chat protocol over a TCP connection.
type LineClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

// DialLineClient connects a LineClient to the given TCP address.
func DialLineClient(t *testing.T, addr string) *LineClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &LineClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

// Send writes one protocol line.
func (c *LineClient) Send(line string) {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(c.t, err)
}

// Expect reads lines one at a time and requires each to match in order.
func (c *LineClient) Expect(lines ...string) {
	c.t.Helper()

	for _, want := range lines {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		got, err := c.r.ReadString('\n')
		require.NoError(c.t, err, "waiting for %q", want)
		require.Equal(c.t, want, strings.TrimSuffix(strings.TrimSuffix(got, "\n"), "\r"))
	}
}

// ExpectClosed requires the server to close the connection.
func (c *LineClient) ExpectClosed() {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := c.r.ReadString('\n')
	require.Error(c.t, err)
}

// Login consumes the banner and login prompt and registers the username.
func (c *LineClient) Login(name string) {
	c.t.Helper()

	c.Expect(Banner, "Login Name?")
	c.Send(name)
	c.Expect("Welcome " + name + "!")
}

// Close closes the client side of the connection.
func (c *LineClient) Close() {
	_ = c.conn.Close()
}

// WebSocketClient drives the chat protocol over a gateway connection, one
// text message per line.
type WebSocketClient struct {
	t    *testing.T
	conn *websocket.Conn
}

// DialWebSocket connects to the gateway with an allowed Origin header.
func DialWebSocket(t *testing.T, url string) *WebSocketClient {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", "http://localhost:8080")

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &WebSocketClient{t: t, conn: conn}
}

// Send writes one chat line as a text message.
func (c *WebSocketClient) Send(line string) {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(line)))
}

// Expect reads text messages and requires each to match in order.
func (c *WebSocketClient) Expect(lines ...string) {
	c.t.Helper()

	for _, want := range lines {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %q", want)
		require.Equal(c.t, want, string(data))
	}
}

// Login consumes the banner and login prompt and registers the username.
func (c *WebSocketClient) Login(name string) {
	c.t.Helper()

	c.Expect(Banner, "Login Name?")
	c.Send(name)
	c.Expect("Welcome " + name + "!")
}
