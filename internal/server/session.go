// Package server manages individual chat sessions, one per client
// connection, handling the inbound and outbound pumps and lifecycle control.
package server

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tyrowin/roomchat/internal/logging"
)

type sessionState int

const (
	stateNew sessionState = iota
	stateLoggedIn
	stateInRoom
)

// Session represents one client connection in the chat system. Its two pumps
// own all I/O on the transport; its logical chat state is owned exclusively
// by the hub goroutine and is never touched from the pumps, so no lock
// guards it. Directives carry state snapshots instead of reading live
// fields.
type Session struct {
	id        string
	transport lineTransport
	hub       *Hub
	out       chan Directive
	limiter   *rateLimiter
	rateLimit RateLimitConfig
	log       *zap.Logger

	// loggedIn flips once at login so the read pump can tell an abnormal
	// termination from a stranger hanging up before authenticating.
	loggedIn atomic.Bool

	// Logical state below is hub-owned: written and read only while
	// processing events on the hub goroutine.
	state    sessionState
	username string
	room     string
	targets  []string
	evicted  bool
}

// NewSession creates a Session over the given transport. The outbound
// directive channel is buffered so the hub never blocks on a slow client;
// the hub launches the pump goroutines when it processes the registration.
func NewSession(transport lineTransport, hub *Hub) *Session {
	cfg := currentConfig()
	id := uuid.NewString()

	return &Session{
		id:        id,
		transport: transport,
		hub:       hub,
		out:       make(chan Directive, cfg.SendQueueSize),
		limiter:   newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit: cfg.RateLimit,
		log: logging.L().With(
			zap.String("session_id", id),
			zap.String("addr", transport.RemoteAddr()),
		),
	}
}

// readPump forwards each received line to the hub's shared inbound channel.
// On end of stream it reports a closed event and exits without closing the
// transport; closing is the write pump's job.
func (s *Session) readPump() {
	defer s.hub.enqueue(event{kind: eventClosed, session: s})

	for {
		line, err := s.transport.ReadLine()
		if err != nil {
			if s.loggedIn.Load() && !errors.Is(err, io.EOF) && !isExpectedCloseError(err) {
				s.log.Error("unexpected inbound termination", zap.Error(err))
			}
			return
		}

		if !s.limiter.allow() {
			s.log.Warn("inbound rate limit exceeded; discarding line",
				zap.Int("burst", s.rateLimit.Burst),
				zap.Duration("refill_interval", s.rateLimit.RefillInterval))
			continue
		}

		s.hub.enqueue(event{kind: eventLine, session: s, line: line})
	}
}

// writePump renders directives from the session's private queue onto the
// wire. It terminates on a failed send or after rendering Goodbye, and in
// either case closes the transport and reports a closed event so the hub's
// bookkeeping stays consistent even when output dies before a client quit.
func (s *Session) writePump() {
	defer func() {
		if err := s.transport.Close(); err != nil && !isExpectedCloseError(err) {
			s.log.Warn("error closing transport", zap.Error(err))
		}
		s.hub.enqueue(event{kind: eventClosed, session: s})
	}()

	for directive := range s.out {
		for _, line := range directive.Lines() {
			if err := s.transport.WriteLine(line); err != nil {
				if !isExpectedCloseError(err) {
					s.log.Warn("send failed; terminating session", zap.Error(err))
				}
				return
			}
		}

		if _, quit := directive.(Goodbye); quit {
			return
		}
	}
}
