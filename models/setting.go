package models

import "time"

// Well-known setting keys.
const (
	SettingMaintenanceMode = "maintenance_mode"
	SettingSignupEnabled   = "signup_enabled"
	SettingNotice          = "notice"
)

// Setting is one global configuration value. Version increments only when
// Value actually changes, so clients can detect "new" notices without a
// separate read-tracking table.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"size:64;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
