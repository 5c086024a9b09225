package entity

import (
	"time"
)

// ToggleEvent is published after every like toggle so the durable like rows
// can be updated asynchronously, off the request path.
type ToggleEvent struct {
	EventID    string        `json:"event_id"`
	Domain     ContentDomain `json:"domain"`
	EntityID   string        `json:"entity_id"`
	ActorID    string        `json:"actor_id"`
	Liked      bool          `json:"liked"`
	OccurredAt time.Time     `json:"occurred_at"`
}
