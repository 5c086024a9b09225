package entity

import (
	"time"
)

// Like is the durable system of record for "who liked what": one row per
// (entity, actor) pair. Rows are soft-deleted so an unlike followed by a
// re-like reuses the same document.
type Like struct {
	ID        string        `bson:"_id,omitempty" json:"id"`
	Domain    ContentDomain `bson:"domain" json:"domain"`
	EntityID  string        `bson:"entity_id" json:"entity_id"`
	ActorID   string        `bson:"actor_id" json:"actor_id"`
	IsDeleted bool          `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}
