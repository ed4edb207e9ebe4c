package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectiveLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		directive Directive
		want      []string
	}{
		{
			name:      "banner",
			directive: Banner{Text: "Welcome to the XYZ chat server"},
			want:      []string{"Welcome to the XYZ chat server"},
		},
		{
			name:      "login prompt",
			directive: LoginPrompt{},
			want:      []string{"Login Name?"},
		},
		{
			name:      "name taken",
			directive: NameTaken{},
			want:      []string{"Sorry, name taken."},
		},
		{
			name:      "invalid name",
			directive: InvalidName{},
			want:      []string{"Sorry, name must contain only letters, numbers and underscore."},
		},
		{
			name:      "welcome",
			directive: Welcome{Name: "alice"},
			want:      []string{"Welcome alice!"},
		},
		{
			name:      "chat line",
			directive: ChatLine{From: "bob", Text: "hello"},
			want:      []string{"bob: hello"},
		},
		{
			name: "room list",
			directive: RoomList{Rooms: []RoomEntry{
				{Name: "alpha", Occupants: 2},
				{Name: "public", Occupants: 0},
			}},
			want: []string{
				"Active rooms are:",
				"* alpha (2)",
				"* public (0)",
				"End of list.",
			},
		},
		{
			name:      "room created",
			directive: RoomCreated{Creator: "alice", Room: "lounge"},
			want:      []string{"* user has created lounge: alice (** this is you)"},
		},
		{
			name:      "room created notice",
			directive: RoomCreatedNotice{Creator: "alice", Room: "lounge"},
			want:      []string{"* user has created lounge: alice"},
		},
		{
			name: "room joined marks self",
			directive: RoomJoined{
				Room:      "public",
				Self:      "bob",
				Occupants: []string{"alice", "bob"},
			},
			want: []string{
				"Entering room: public",
				"* alice",
				"* bob (** this is you)",
				"End of list.",
			},
		},
		{
			name:      "user joined",
			directive: UserJoined{User: "bob", Room: "public"},
			want:      []string{"* new user joined public: bob"},
		},
		{
			name:      "room left",
			directive: RoomLeft{User: "alice", Room: "public"},
			want:      []string{"* user has left public: alice (** this is you)"},
		},
		{
			name:      "user left",
			directive: UserLeft{User: "alice", Room: "public"},
			want:      []string{"* user has left public: alice"},
		},
		{
			name:      "unknown room",
			directive: UnknownRoom{Room: "nowhere"},
			want:      []string{"Sorry, room nowhere is not available."},
		},
		{
			name:      "room exists",
			directive: RoomExists{Room: "public"},
			want:      []string{"Sorry, room public already exists."},
		},
		{
			name:      "invalid room name",
			directive: InvalidRoomName{},
			want:      []string{"Sorry, room name must contain only letters, numbers and underscore."},
		},
		{
			name:      "not in room",
			directive: NotInRoom{},
			want:      []string{"Sorry, you are not in a room. Use /join to enter a room"},
		},
		{
			name:      "now private",
			directive: NowPrivate{Targets: []string{"bob", "carol"}},
			want:      []string{"* you are now chatting privately: bob carol"},
		},
		{
			name:      "now public",
			directive: NowPublic{},
			want:      []string{"* you are now chatting publicly"},
		},
		{
			name:      "invalid private target",
			directive: InvalidPrivateTarget{Name: "mallory"},
			want:      []string{"Sorry, user mallory is not available."},
		},
		{
			name:      "unknown command",
			directive: UnknownCommand{},
			want:      []string{"Sorry, you have entered an unknown command"},
		},
		{
			name:      "goodbye",
			directive: Goodbye{},
			want:      []string{"BYE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.directive.Lines())
		})
	}
}
