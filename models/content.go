package models

import "time"

// EntityKind identifies which content table a row, tag link, or engagement row belongs to.
type EntityKind string

const (
	KindClass   EntityKind = "class"
	KindGallery EntityKind = "gallery"
	KindNews    EntityKind = "news"
)

// Valid reports whether k is one of the known content kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case KindClass, KindGallery, KindNews:
		return true
	}
	return false
}

// TableName returns the gorm table holding rows of this kind.
func (k EntityKind) TableName() string {
	switch k {
	case KindClass:
		return "classes"
	case KindGallery:
		return "galleries"
	case KindNews:
		return "news"
	}
	return ""
}

// Bucket returns the object storage bucket for this kind's assets.
// News carries no bucket: its body references no managed objects.
func (k EntityKind) Bucket() string {
	switch k {
	case KindClass:
		return "class"
	case KindGallery:
		return "gallery"
	}
	return ""
}

// Class is a course/lecture entry in the education catalog.
// Rows are never hard-deleted; IsDeleted hides them everywhere.
type Class struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"size:1024" json:"description"`
	Category     string    `gorm:"size:64" json:"category"`
	Content      string    `gorm:"type:text" json:"content"`
	ThumbnailURL string    `gorm:"size:1024" json:"thumbnail_url"`
	IsPublished  bool      `gorm:"default:false;index" json:"is_published"`
	IsDeleted    bool      `gorm:"default:false;index" json:"-"`
	Version      int       `gorm:"default:1" json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Gallery is a portfolio gallery entry. Cover images live under the
// {id}/images/ storage category; body images under {id}/content/.
type Gallery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"size:1024" json:"description"`
	Category     string    `gorm:"size:64" json:"category"`
	Content      string    `gorm:"type:text" json:"content"`
	ThumbnailURL string    `gorm:"size:1024" json:"thumbnail_url"`
	IsPublished  bool      `gorm:"default:false;index" json:"is_published"`
	IsDeleted    bool      `gorm:"default:false;index" json:"-"`
	Version      int       `gorm:"default:1" json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// News is an announcement article. Plain body, no managed storage assets.
type News struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"size:1024" json:"description"`
	Category     string    `gorm:"size:64" json:"category"`
	Content      string    `gorm:"type:text" json:"content"`
	ThumbnailURL string    `gorm:"size:1024" json:"thumbnail_url"`
	IsPublished  bool      `gorm:"default:false;index" json:"is_published"`
	IsDeleted    bool      `gorm:"default:false;index" json:"-"`
	Version      int       `gorm:"default:1" json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
