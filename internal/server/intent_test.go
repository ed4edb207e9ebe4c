package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want Intent
	}{
		{
			name: "chat text",
			line: "hello there",
			want: ChatIntent{Text: "hello there"},
		},
		{
			name: "chat text is trimmed",
			line: "  hello there \r",
			want: ChatIntent{Text: "hello there"},
		},
		{
			name: "rooms",
			line: "/rooms",
			want: ListRoomsIntent{},
		},
		{
			name: "create with name",
			line: "/create lounge",
			want: CreateRoomIntent{Name: "lounge"},
		},
		{
			name: "create without name",
			line: "/create",
			want: CreateRoomIntent{Name: ""},
		},
		{
			name: "create with extra whitespace",
			line: "  /create   lounge  ",
			want: CreateRoomIntent{Name: "lounge"},
		},
		{
			name: "join",
			line: "/join public",
			want: JoinRoomIntent{Name: "public"},
		},
		{
			name: "leave",
			line: "/leave",
			want: LeaveRoomIntent{},
		},
		{
			name: "quit",
			line: "/quit",
			want: QuitIntent{},
		},
		{
			name: "private with targets",
			line: "/private alice bob",
			want: PrivateIntent{Targets: []string{"alice", "bob"}},
		},
		{
			name: "private without targets",
			line: "/private",
			want: PrivateIntent{Targets: []string{}},
		},
		{
			name: "public",
			line: "/public",
			want: PublicIntent{},
		},
		{
			name: "unknown command",
			line: "/frobnicate now",
			want: UnknownIntent{},
		},
		{
			name: "lone slash",
			line: "/",
			want: UnknownIntent{},
		},
		{
			name: "slash mid-line is chat",
			line: "see /rooms for the list",
			want: ChatIntent{Text: "see /rooms for the list"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, DecodeIntent(tt.line))
		})
	}
}

func TestDecodeIntentPrivateKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	got := DecodeIntent("/private bob alice bob")
	assert.Equal(t, PrivateIntent{Targets: []string{"bob", "alice", "bob"}}, got)
}
