package models

import "time"

// Inquiry status values. pending -> answered happens automatically on the
// first admin reply; closing is always an explicit admin action.
const (
	InquiryStatusPending  = "pending"
	InquiryStatusAnswered = "answered"
	InquiryStatusClosed   = "closed"
)

// Message author roles.
const (
	InquiryAuthorUser  = "user"
	InquiryAuthorAdmin = "admin"
)

// Inquiry is a support ticket opened by a user.
type Inquiry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Subject        string    `gorm:"size:255;not null" json:"subject"`
	Status         string    `gorm:"size:16;not null;default:'pending';index" json:"status"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User     User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Messages []InquiryMessage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"messages,omitempty"`
}

// InquiryMessage is one entry in a ticket's ordered conversation.
type InquiryMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InquiryID  uint      `gorm:"index;not null" json:"inquiry_id"`
	AuthorRole string    `gorm:"size:16;not null" json:"author_role"`
	AuthorID   uint      `gorm:"index" json:"author_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
