// Package server defines the outbound directives the hub enqueues on
// sessions. Each directive is immutable, carries only display data, and
// renders itself to wire lines; consuming one never mutates session state.
package server

import (
	"fmt"
	"strings"
)

// Directive is one outbound effect for a single session. Lines returns the
// exact text to send, one wire line per element.
type Directive interface {
	Lines() []string
}

// Banner greets a freshly accepted connection.
type Banner struct {
	Text string
}

// LoginPrompt asks the client for a username.
type LoginPrompt struct{}

// NameTaken rejects a login because the username is already registered.
type NameTaken struct{}

// InvalidName rejects a login because the username fails validation.
type InvalidName struct{}

// Welcome confirms a successful login.
type Welcome struct {
	Name string
}

// ChatLine delivers one chat message.
type ChatLine struct {
	From string
	Text string
}

// RoomEntry is one row of a room listing.
type RoomEntry struct {
	Name      string
	Occupants int
}

// RoomList answers /rooms; entries are pre-sorted by room name.
type RoomList struct {
	Rooms []RoomEntry
}

// RoomCreated confirms room creation to the creator.
type RoomCreated struct {
	Creator string
	Room    string
}

// RoomCreatedNotice announces a new room to everyone else.
type RoomCreatedNotice struct {
	Creator string
	Room    string
}

// RoomJoined confirms a join to the joiner, with the sorted occupant list.
type RoomJoined struct {
	Room      string
	Self      string
	Occupants []string
}

// UserJoined announces a join to the room's other occupants.
type UserJoined struct {
	User string
	Room string
}

// RoomLeft confirms a leave to the leaver.
type RoomLeft struct {
	User string
	Room string
}

// UserLeft announces a leave to the room's remaining occupants.
type UserLeft struct {
	User string
	Room string
}

// UnknownRoom rejects a /join for a room that does not exist.
type UnknownRoom struct {
	Room string
}

// RoomExists rejects a /create for a room that already exists.
type RoomExists struct {
	Room string
}

// InvalidRoomName rejects a /create with an invalid room name.
type InvalidRoomName struct{}

// NotInRoom rejects a room-scoped command issued outside any room.
type NotInRoom struct{}

// NowPrivate confirms private targeting.
type NowPrivate struct {
	Targets []string
}

// NowPublic confirms a return to room-wide chat.
type NowPublic struct{}

// InvalidPrivateTarget rejects /private naming a user outside the room.
type InvalidPrivateTarget struct {
	Name string
}

// UnknownCommand answers an unrecognized slash command.
type UnknownCommand struct{}

// Goodbye acknowledges a quit. It is the designed exit of the write pump:
// after rendering it the session shuts down.
type Goodbye struct{}

func (d Banner) Lines() []string      { return []string{d.Text} }
func (LoginPrompt) Lines() []string   { return []string{"Login Name?"} }
func (NameTaken) Lines() []string     { return []string{"Sorry, name taken."} }
func (InvalidName) Lines() []string {
	return []string{"Sorry, name must contain only letters, numbers and underscore."}
}
func (d Welcome) Lines() []string  { return []string{fmt.Sprintf("Welcome %s!", d.Name)} }
func (d ChatLine) Lines() []string { return []string{fmt.Sprintf("%s: %s", d.From, d.Text)} }

func (d RoomList) Lines() []string {
	lines := make([]string, 0, len(d.Rooms)+2)
	lines = append(lines, "Active rooms are:")
	for _, r := range d.Rooms {
		lines = append(lines, fmt.Sprintf("* %s (%d)", r.Name, r.Occupants))
	}
	return append(lines, "End of list.")
}

func (d RoomCreated) Lines() []string {
	return []string{fmt.Sprintf("* user has created %s: %s (** this is you)", d.Room, d.Creator)}
}

func (d RoomCreatedNotice) Lines() []string {
	return []string{fmt.Sprintf("* user has created %s: %s", d.Room, d.Creator)}
}

func (d RoomJoined) Lines() []string {
	lines := make([]string, 0, len(d.Occupants)+2)
	lines = append(lines, fmt.Sprintf("Entering room: %s", d.Room))
	for _, name := range d.Occupants {
		if name == d.Self {
			lines = append(lines, fmt.Sprintf("* %s (** this is you)", name))
		} else {
			lines = append(lines, fmt.Sprintf("* %s", name))
		}
	}
	return append(lines, "End of list.")
}

func (d UserJoined) Lines() []string {
	return []string{fmt.Sprintf("* new user joined %s: %s", d.Room, d.User)}
}

func (d RoomLeft) Lines() []string {
	return []string{fmt.Sprintf("* user has left %s: %s (** this is you)", d.Room, d.User)}
}

func (d UserLeft) Lines() []string {
	return []string{fmt.Sprintf("* user has left %s: %s", d.Room, d.User)}
}

func (d UnknownRoom) Lines() []string {
	return []string{fmt.Sprintf("Sorry, room %s is not available.", d.Room)}
}

func (d RoomExists) Lines() []string {
	return []string{fmt.Sprintf("Sorry, room %s already exists.", d.Room)}
}

func (InvalidRoomName) Lines() []string {
	return []string{"Sorry, room name must contain only letters, numbers and underscore."}
}

func (NotInRoom) Lines() []string {
	return []string{"Sorry, you are not in a room. Use /join to enter a room"}
}

func (d NowPrivate) Lines() []string {
	return []string{fmt.Sprintf("* you are now chatting privately: %s", strings.Join(d.Targets, " "))}
}

func (NowPublic) Lines() []string { return []string{"* you are now chatting publicly"} }

func (d InvalidPrivateTarget) Lines() []string {
	return []string{fmt.Sprintf("Sorry, user %s is not available.", d.Name)}
}

func (UnknownCommand) Lines() []string {
	return []string{"Sorry, you have entered an unknown command"}
}

func (Goodbye) Lines() []string { return []string{"BYE"} }
