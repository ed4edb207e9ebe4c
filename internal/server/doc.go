// Package server implements the core session and dispatch engine for the
// roomchat service.
//
// The implementation is organized into specialized files for configuration,
// transports, sessions, the hub state machine, the TCP acceptor, and the
// WebSocket gateway to keep the codebase maintainable and testable as the
// project grows.
package server
