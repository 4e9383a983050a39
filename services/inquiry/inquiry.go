// Package inquiry implements the question-and-answer workflow between site
// visitors and administrators, including the pending / answered / closed
// status machine.
package inquiry

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/utils"
)

var (
	ErrNotFound  = errors.New("inquiry: not found")
	ErrClosed    = errors.New("inquiry: closed inquiries accept no replies")
	ErrForbidden = errors.New("inquiry: not the author")
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}

// Create opens a new inquiry with its first message.
func (s *Service) Create(userID uint, subject, body string) (*models.Inquiry, error) {
	now := time.Now()
	inq := models.Inquiry{
		UserID:         userID,
		Subject:        subject,
		Status:         models.InquiryStatusPending,
		LastActivityAt: now,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inq).Error; err != nil {
			return err
		}
		msg := models.InquiryMessage{
			InquiryID:  inq.ID,
			AuthorRole: models.InquiryAuthorUser,
			AuthorID:   userID,
			Content:    body,
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

// Get loads one inquiry with its message thread. A non-admin caller only
// sees their own inquiries.
func (s *Service) Get(id, userID uint, isAdmin bool) (*models.Inquiry, error) {
	var inq models.Inquiry
	err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Take(&inq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && inq.UserID != userID {
		return nil, ErrForbidden
	}
	return &inq, nil
}

// ListForUser returns the caller's inquiries, most recently active first.
func (s *Service) ListForUser(userID uint) ([]models.Inquiry, error) {
	var out []models.Inquiry
	err := s.db.Where("user_id = ?", userID).
		Order("last_activity_at DESC").Find(&out).Error
	return out, err
}

// ListAll returns every inquiry, optionally filtered by status, for admins.
func (s *Service) ListAll(status string) ([]models.Inquiry, error) {
	q := s.db.Order("last_activity_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Inquiry
	err := q.Find(&out).Error
	return out, err
}

// Reply appends a message to the thread. User replies on an answered inquiry
// move it back to pending; the first admin reply moves a pending inquiry to
// answered and notifies the author by mail. Closed inquiries reject replies
// from both sides.
func (s *Service) Reply(id, authorID uint, role, body string) (*models.InquiryMessage, error) {
	var inq models.Inquiry
	if err := s.db.Take(&inq, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inq.Status == models.InquiryStatusClosed {
		return nil, ErrClosed
	}
	if role == models.InquiryAuthorUser && inq.UserID != authorID {
		return nil, ErrForbidden
	}

	nextStatus := inq.Status
	switch role {
	case models.InquiryAuthorAdmin:
		nextStatus = models.InquiryStatusAnswered
	case models.InquiryAuthorUser:
		nextStatus = models.InquiryStatusPending
	}

	msg := models.InquiryMessage{
		InquiryID:  id,
		AuthorRole: role,
		AuthorID:   authorID,
		Content:    body,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Inquiry{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":           nextStatus,
				"last_activity_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if role == models.InquiryAuthorAdmin {
		s.notifyAuthor(&inq, body)
	}
	return &msg, nil
}

// Close marks an inquiry closed. Only admins call this; a closed inquiry is
// terminal.
func (s *Service) Close(id uint) error {
	res := s.db.Model(&models.Inquiry{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           models.InquiryStatusClosed,
			"last_activity_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// notifyAuthor sends the answered-mail best effort. A mail failure never
// fails the reply itself.
func (s *Service) notifyAuthor(inq *models.Inquiry, answer string) {
	var user models.User
	if err := s.db.Take(&user, inq.UserID).Error; err != nil {
		if s.logger != nil {
			s.logger.Warnf("inquiry notify: load user %d failed: %v", inq.UserID, err)
		}
		return
	}
	if user.Email == "" {
		return
	}
	if err := utils.SendInquiryAnsweredMail(user.Email, inq.Subject, answer); err != nil && s.logger != nil {
		s.logger.Warnf("inquiry notify: mail to %s failed: %v", user.Email, err)
	}
}
