package sync

import "time"

// Collection event types.
const (
	EventWelcome  = "welcome"
	EventCreated  = "manga.created"
	EventUpdated  = "manga.updated"
	EventDeleted  = "manga.deleted"
	EventImported = "manga.imported"
)

// Subscriber transports.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// CollectionEvent is pushed to every connected client after a mutation.
// The first event on a fresh connection is a welcome whose Count is the
// number of subscribers including the new one.
type CollectionEvent struct {
	Type      string    `json:"type"`
	IDs       []string  `json:"ids,omitempty"`
	Count     int       `json:"count"`
	Transport string    `json:"transport,omitempty"`
	At        time.Time `json:"at"`
}
