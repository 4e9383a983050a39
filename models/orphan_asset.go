package models

import "time"

// OrphanAsset records a storage object known to be unreferenced: either a
// rollback delete that failed, or assets of a soft-deleted entity. A periodic
// sweeper retries deletion and drops the row once the object is gone.
type OrphanAsset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Bucket    string    `gorm:"size:64;not null" json:"bucket"`
	ObjectKey string    `gorm:"size:1024;not null" json:"object_key"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
