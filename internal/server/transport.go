// Package server provides the line transports sessions speak over: raw TCP
// with newline framing, and a WebSocket adapter where one text message is
// one chat line.
package server

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// lineTransport turns a client connection into discrete message lines.
// ReadLine returns exactly one line without its terminator; any read error
// (including a closed peer) ends the stream. WriteLine must deliver the whole
// line or fail.
type lineTransport interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

// tcpTransport frames newline-delimited text over a stream connection. The
// bufio reader accumulates short reads until a terminator arrives and keeps
// the remainder buffered for the next call. No line length cap is enforced.
type tcpTransport struct {
	conn net.Conn
	r    *bufio.Reader
}

func newTCPTransport(conn net.Conn) *tcpTransport {
	return &tcpTransport{conn: conn, r: bufio.NewReader(conn)}
}

func (t *tcpTransport) ReadLine() (string, error) {
	line, err := t.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (t *tcpTransport) WriteLine(line string) error {
	// net.Conn.Write loops over partial writes internally and reports an
	// error whenever fewer bytes than requested reached the wire.
	_, err := t.conn.Write(append([]byte(line), '\n'))
	return err
}

func (t *tcpTransport) Close() error { return t.conn.Close() }

func (t *tcpTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

// wsTransport bridges a WebSocket connection into the session engine:
// pings on a ticker, pong-refreshed read deadlines, and write deadlines on
// every frame. The connection permits only one concurrent writer, so every
// frame write (lines and pings alike) goes through writeMessage, which holds
// writeMu.
type wsTransport struct {
	conn    *websocket.Conn
	done    chan struct{}
	writeMu sync.Mutex
}

func newWSTransport(conn *websocket.Conn, maxMessageSize int64) *wsTransport {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	t := &wsTransport{conn: conn, done: make(chan struct{})}
	go t.pingLoop()
	return t
}

func (t *wsTransport) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-t.done:
			return
		}
	}
}

func (t *wsTransport) writeMessage(messageType int, data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(messageType, data)
}

func (t *wsTransport) ReadLine() (string, error) {
	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		line := strings.TrimSuffix(string(data), "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}
}

func (t *wsTransport) WriteLine(line string) error {
	return t.writeMessage(websocket.TextMessage, []byte(line))
}

func (t *wsTransport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return t.conn.Close()
}

func (t *wsTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }
