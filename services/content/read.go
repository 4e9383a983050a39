package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/storage"
)

// ListOptions filters a public or admin listing.
type ListOptions struct {
	Category      string
	Page          int
	PageSize      int
	IncludeDrafts bool
}

// List returns one page of entities, newest first, with the total row count
// for the filter.
func (s *Service) List(kind models.EntityKind, opt ListOptions) ([]Entity, int64, error) {
	if opt.Page < 1 {
		opt.Page = 1
	}
	if opt.PageSize < 1 || opt.PageSize > 100 {
		opt.PageSize = 12
	}
	q := s.db.Table(kind.TableName()).Where("is_deleted = ?", false)
	if !opt.IncludeDrafts {
		q = q.Where("is_published = ?", true)
	}
	if opt.Category != "" {
		q = q.Where("category = ?", opt.Category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []Entity
	err := q.Order("created_at DESC, id DESC").
		Offset((opt.Page - 1) * opt.PageSize).
		Limit(opt.PageSize).
		Find(&rows).Error
	return rows, total, err
}

// GetBySlug fetches one entity by its slug along with its tag names. Drafts
// stay hidden unless includeDrafts is set.
func (s *Service) GetBySlug(kind models.EntityKind, slug string, includeDrafts bool) (*Entity, []string, error) {
	q := s.db.Table(kind.TableName()).Where("slug = ? AND is_deleted = ?", slug, false)
	if !includeDrafts {
		q = q.Where("is_published = ?", true)
	}
	var row Entity
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	tags, err := TagNames(s.db, kind, row.ID)
	if err != nil {
		return nil, nil, err
	}
	return &row, tags, nil
}

// Get fetches one live entity by id.
func (s *Service) Get(kind models.EntityKind, id uint) (*Entity, error) {
	return s.load(kind, id)
}

// UploadGalleryImage stores a standalone gallery image under the entity's
// images prefix and returns its public URL. The URL only enters the content
// lifecycle once the admin embeds it and saves.
func (s *Service) UploadGalleryImage(ctx context.Context, galleryID uint, file Upload) (string, error) {
	if _, err := s.load(models.KindGallery, galleryID); err != nil {
		return "", err
	}
	key := storage.GalleryImageKey(galleryID, uuid.NewString())
	return s.store.Upload(ctx, models.KindGallery.Bucket(), key, file.Data, contentTypeOrWebp(file.ContentType))
}
