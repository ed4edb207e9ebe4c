// Package server accepts TCP chat connections and hands each one to the hub
// as a new session.
package server

import (
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/Tyrowin/roomchat/internal/logging"
)

// Acceptor owns the TCP listener for the line protocol. A fatal accept error
// stops the acceptor only; the hub keeps serving established sessions.
type Acceptor struct {
	ln  net.Listener
	hub *Hub
	log *zap.Logger
}

// NewAcceptor binds the chat listener on addr.
func NewAcceptor(addr string, hub *Hub) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	return &Acceptor{
		ln:  ln,
		hub: hub,
		log: logging.L().Named("acceptor"),
	}, nil
}

// Addr returns the bound listener address, useful when listening on :0.
func (a *Acceptor) Addr() net.Addr { return a.ln.Addr() }

// Run accepts connections until the listener is closed or fails. Each
// connection becomes a Session announced to the hub, which starts its pumps.
func (a *Acceptor) Run() error {
	a.log.Info("accepting chat connections", zap.String("addr", a.ln.Addr().String()))

	for {
		conn, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.log.Error("accept failed; acceptor stopping", zap.Error(err))
			return err
		}

		a.log.Info("connection accepted", zap.String("addr", conn.RemoteAddr().String()))
		a.hub.Register(NewSession(newTCPTransport(conn), a.hub))
	}
}

// Close stops the listener. Shutdown here is best effort: in-flight accepts
// are abandoned, established sessions are drained by the hub.
func (a *Acceptor) Close() error {
	return a.ln.Close()
}
