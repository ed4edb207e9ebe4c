// Package server exposes the HTTP side of the service: the WebSocket gateway
// that bridges browser clients into the chat hub, plus health check and a
// built-in test page.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Tyrowin/roomchat/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// Gateway bridges WebSocket clients into the hub. A gateway client is an
// ordinary session: one WebSocket text message is one chat line, and the
// same login and room state machine applies.
type Gateway struct {
	hub *Hub
	log *zap.Logger
}

// NewGateway creates a Gateway feeding the given hub.
func NewGateway(hub *Hub) *Gateway {
	return &Gateway{hub: hub, log: logging.L().Named("gateway")}
}

// Routes configures and returns the gateway's HTTP ServeMux with handlers
// for health check, WebSocket endpoint, and test page.
func (g *Gateway) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", g.HealthHandler)
	mux.HandleFunc("/ws", g.WebSocketHandler)
	mux.HandleFunc("/test", g.TestPageHandler)
	return mux
}

// WebSocketHandler handles WebSocket upgrade requests. It validates the
// method, upgrades the connection, and registers the resulting session with
// the hub, which starts the session's pumps.
func (g *Gateway) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cfg := currentConfig()
	g.hub.Register(NewSession(newWSTransport(conn, cfg.MaxMessageSize), g.hub))
}

// HealthHandler provides a simple health check endpoint that returns server
// status as plain text.
func (g *Gateway) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "roomchat server is running!")
}

// TestPageHandler serves a minimal HTML page for exercising the gateway from
// a browser: it connects to /ws and exchanges chat lines.
func (g *Gateway) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head><title>roomchat test</title></head>
<body>
    <h1>roomchat WebSocket test</h1>
    <pre id="log" style="border:1px solid #ccc;height:300px;overflow-y:scroll;padding:10px;"></pre>
    <input type="text" id="line" placeholder="Type a line...">
    <button onclick="send()">Send</button>
    <script>
        const log = document.getElementById('log');
        const line = document.getElementById('line');
        const ws = new WebSocket('ws://' + location.host + '/ws');
        ws.onmessage = e => { log.textContent += e.data + '\n'; log.scrollTop = log.scrollHeight; };
        ws.onclose = () => { log.textContent += '(disconnected)\n'; };
        function send() { ws.send(line.value); line.value = ''; }
        line.addEventListener('keypress', e => { if (e.key === 'Enter') send(); });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		g.log.Warn("error writing test page", zap.Error(err))
	}
}

// CreateServer creates and configures an HTTP server for the gateway with
// timeout values suited to long-lived WebSocket upgrades.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

// StartServer starts the gateway HTTP server and blocks until it exits.
func StartServer(server *http.Server) error {
	logging.L().Info("gateway listening", zap.String("addr", server.Addr))
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the gateway HTTP server, waiting for
// active connections to close or until the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.L().Warn("gateway shutdown error", zap.Error(err))
		return err
	}

	logging.L().Info("gateway shutdown completed")
	return nil
}
