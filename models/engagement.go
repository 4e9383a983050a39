package models

import "time"

// Like records a user liking a content entity. Existence means true;
// toggling off deletes the row. No update path exists.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EntityKind EntityKind `gorm:"size:16;not null;index:idx_like_entity_user,unique" json:"entity_kind"`
	EntityID   uint       `gorm:"not null;index:idx_like_entity_user,unique" json:"entity_id"`
	UserID     uint       `gorm:"not null;index:idx_like_entity_user,unique;index" json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Save records a user bookmarking a content entity, same semantics as Like.
type Save struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EntityKind EntityKind `gorm:"size:16;not null;index:idx_save_entity_user,unique" json:"entity_kind"`
	EntityID   uint       `gorm:"not null;index:idx_save_entity_user,unique" json:"entity_id"`
	UserID     uint       `gorm:"not null;index:idx_save_entity_user,unique;index" json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
