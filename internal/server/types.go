// Package server defines the shared inbound event type that sessions and the
// acceptor feed to the hub, plus small helpers reused across the package.
package server

import "strings"

type eventKind int

const (
	// eventRegister announces a freshly accepted session.
	eventRegister eventKind = iota
	// eventLine carries one wire line received from a session.
	eventLine
	// eventClosed reports that a session's connection is gone; the hub
	// reconciles registry and room state exactly as for a client quit.
	eventClosed
)

// event is one entry on the hub's shared inbound channel. Every mutation of
// chat state happens in response to one of these, on the hub goroutine.
type event struct {
	kind    eventKind
	session *Session
	line    string
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer")
}
