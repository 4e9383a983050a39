package models

import "time"

// Tag is a short label attached to content entities.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentTag links a tag to a content entity. A given (kind, entity, tag)
// triple is linked at most once.
type ContentTag struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EntityKind EntityKind `gorm:"size:16;not null;index:idx_content_tag,unique" json:"entity_kind"`
	EntityID   uint       `gorm:"not null;index:idx_content_tag,unique" json:"entity_id"`
	TagID      uint       `gorm:"not null;index:idx_content_tag,unique;index" json:"tag_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
