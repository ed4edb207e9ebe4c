// Package server implements the chat service core: the line-oriented
// session engine, the command codec, and the hub that owns all shared chat
// state.
package server

import "strings"

// Intent is a decoded client line: either chat text or one of the slash
// commands. The set is closed so hub dispatch can switch exhaustively.
type Intent interface {
	isIntent()
}

// ChatIntent is a plain chat line addressed to the sender's current room.
type ChatIntent struct {
	Text string
}

// ListRoomsIntent requests the room list (/rooms).
type ListRoomsIntent struct{}

// CreateRoomIntent creates a new named room (/create NAME).
type CreateRoomIntent struct {
	Name string
}

// JoinRoomIntent enters a named room (/join NAME).
type JoinRoomIntent struct {
	Name string
}

// LeaveRoomIntent exits the current room (/leave).
type LeaveRoomIntent struct{}

// QuitIntent disconnects from the server (/quit).
type QuitIntent struct{}

// PrivateIntent narrows chat delivery to the named room occupants
// (/private NAME [NAME...]). Targets may be empty.
type PrivateIntent struct {
	Targets []string
}

// PublicIntent restores full-room chat delivery (/public).
type PublicIntent struct{}

// UnknownIntent is any unrecognized slash command.
type UnknownIntent struct{}

func (ChatIntent) isIntent()       {}
func (ListRoomsIntent) isIntent()  {}
func (CreateRoomIntent) isIntent() {}
func (JoinRoomIntent) isIntent()   {}
func (LeaveRoomIntent) isIntent()  {}
func (QuitIntent) isIntent()       {}
func (PrivateIntent) isIntent()    {}
func (PublicIntent) isIntent()     {}
func (UnknownIntent) isIntent()    {}

// DecodeIntent classifies one wire line. Recognition is prefix-based: a line
// starting with "/" and a known keyword is that command with the trimmed
// remainder as payload; any other "/" line is UnknownIntent; everything else
// is chat text.
func DecodeIntent(line string) Intent {
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, "/create"):
		return CreateRoomIntent{Name: strings.TrimSpace(strings.TrimPrefix(line, "/create"))}
	case strings.HasPrefix(line, "/rooms"):
		return ListRoomsIntent{}
	case strings.HasPrefix(line, "/join"):
		return JoinRoomIntent{Name: strings.TrimSpace(strings.TrimPrefix(line, "/join"))}
	case strings.HasPrefix(line, "/leave"):
		return LeaveRoomIntent{}
	case strings.HasPrefix(line, "/quit"):
		return QuitIntent{}
	case strings.HasPrefix(line, "/private"):
		return PrivateIntent{Targets: strings.Fields(strings.TrimPrefix(line, "/private"))}
	case strings.HasPrefix(line, "/public"):
		return PublicIntent{}
	case strings.HasPrefix(line, "/"):
		return UnknownIntent{}
	}

	return ChatIntent{Text: line}
}
