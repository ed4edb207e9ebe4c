// Package roomstore persists the set of chat room names. Room existence is
// durable across restarts; room occupancy never is. Two backends are
// provided: a YAML file (the default) and a Redis set.
package roomstore

import "context"

// DefaultRoom is the room every fresh store is bootstrapped with.
const DefaultRoom = "public"

// Store is the durable set of room names required by the chat hub.
type Store interface {
	// LoadRoomNames returns every known room name. A store with no prior
	// state bootstraps itself with DefaultRoom before returning.
	LoadRoomNames(ctx context.Context) ([]string, error)

	// AddRoomName durably records a newly created room.
	AddRoomName(ctx context.Context, name string) error

	Close() error
}
