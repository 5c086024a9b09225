package entity

import (
	"time"
)

// EntityStats is the denormalized per-entity aggregate document used for
// ranking and sorting. View and like counts here are reconciled from the
// cache by the write-back scheduler, not written on every interaction.
type EntityStats struct {
	ID            string        `bson:"_id" json:"id"`
	Domain        ContentDomain `bson:"domain" json:"domain"`
	ViewCount     int64         `bson:"view_count" json:"view_count"`
	LikeCount     int64         `bson:"like_count" json:"like_count"`
	HotScore      float64       `bson:"hot_score" json:"hot_score"`
	HotScoreFinal bool          `bson:"hot_score_final" json:"hot_score_final"`
	Category      string        `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}
