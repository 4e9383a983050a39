// Package content orchestrates the lifecycle of classes, galleries and news:
// object uploads, placeholder resolution, stale-image cleanup, tag linking
// and the versioned row commit, all under a compensating step runner.
package content

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/storage"
)

var (
	ErrNotFound        = errors.New("content: entity not found")
	ErrVersionConflict = errors.New("content: entity was modified concurrently")
	ErrSlugTaken       = errors.New("content: slug already in use")
)

// Service bundles the database and object store behind the content workflow.
type Service struct {
	db     *gorm.DB
	store  storage.ObjectStore
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, store storage.ObjectStore, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, store: store, logger: logger}
}

// Entity is the column set shared by all three content tables, read and
// written through kind.TableName().
type Entity struct {
	ID           uint      `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Content      string    `json:"content"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsPublished  bool      `json:"is_published"`
	IsDeleted    bool      `json:"-"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Service) load(kind models.EntityKind, id uint) (*Entity, error) {
	var row Entity
	err := s.db.Table(kind.TableName()).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// recordOrphan remembers an object whose deletion failed so the background
// sweeper can retry it. Best effort, failures are only logged.
func (s *Service) recordOrphan(bucket, key, reason string) {
	orphan := models.OrphanAsset{Bucket: bucket, ObjectKey: key, Reason: reason}
	if err := s.db.Create(&orphan).Error; err != nil && s.logger != nil {
		s.logger.Warnf("record orphan asset failed bucket=%s key=%s err=%v", bucket, key, err)
	}
}

// deleteOrOrphan deletes an object and falls back to the orphan ledger when
// the store refuses.
func (s *Service) deleteOrOrphan(ctx context.Context, bucket, key, reason string) {
	if err := s.store.Delete(ctx, bucket, key); err != nil {
		if s.logger != nil {
			s.logger.Warnf("delete object failed bucket=%s key=%s err=%v", bucket, key, err)
		}
		s.recordOrphan(bucket, key, reason)
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9가-힣]+`)

// Slugify derives a URL slug from a title. Hangul is kept as-is since the
// site serves localized titles.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}
