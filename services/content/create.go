package content

import (
	"context"
	"strings"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/saga"
	"github.com/atelierhub/atelier/storage"
)

// CreateInput carries one admin creation submission.
type CreateInput struct {
	Kind                models.EntityKind
	Slug                string
	Title               string
	Description         string
	Category            string
	Content             string
	Tags                string
	IsPublished         bool
	Thumbnail           *Upload
	ContentImages       []Upload
	ContentImageTempIDs []string
}

// Create inserts the row first so uploads can live under its id, then runs
// the same phased workflow as Update. A failed phase removes the fresh row
// again; it was never visible, so a hard delete is safe.
func (s *Service) Create(ctx context.Context, in CreateInput) (uint, error) {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	var count int64
	if err := s.db.Table(in.Kind.TableName()).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrSlugTaken
	}

	bucket := in.Kind.Bucket()
	row := Entity{
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Content:     in.Content,
		IsPublished: in.IsPublished,
		Version:     1,
	}
	newThumbURL := ""
	newContent := in.Content
	var uploadedKeys []string

	steps := []saga.Step{
		{
			Name: "insert",
			Do: func(ctx context.Context) error {
				return s.db.Table(in.Kind.TableName()).Create(&row).Error
			},
			Undo: func(ctx context.Context) error {
				return s.db.Table(in.Kind.TableName()).Where("id = ?", row.ID).Delete(&Entity{}).Error
			},
		},
		{
			Name: "thumbnail",
			Do: func(ctx context.Context) error {
				if in.Thumbnail == nil || bucket == "" {
					return nil
				}
				key := storage.ThumbnailKey(row.ID)
				url, err := s.store.Upload(ctx, bucket, key, in.Thumbnail.Data, contentTypeOrWebp(in.Thumbnail.ContentType))
				if err != nil {
					return err
				}
				newThumbURL = url
				return nil
			},
			Undo: func(ctx context.Context) error {
				if newThumbURL == "" {
					return nil
				}
				s.deleteOrOrphan(ctx, bucket, storage.ThumbnailKey(row.ID), "create rollback")
				return nil
			},
		},
		{
			Name: "content-images",
			Do: func(ctx context.Context) error {
				if bucket == "" {
					return nil
				}
				resolved, keys, err := ResolveTempImages(ctx, s.store, bucket, row.ID, in.Content, in.ContentImages, in.ContentImageTempIDs)
				uploadedKeys = keys
				if err != nil {
					return err
				}
				newContent = resolved
				return nil
			},
			Undo: func(ctx context.Context) error {
				for _, key := range uploadedKeys {
					s.deleteOrOrphan(ctx, bucket, key, "create rollback")
				}
				return nil
			},
		},
		{
			Name: "tags",
			Do: func(ctx context.Context) error {
				return ProcessTags(s.db, in.Kind, row.ID, in.Tags)
			},
			Undo: func(ctx context.Context) error {
				return UnlinkAll(s.db, in.Kind, row.ID)
			},
		},
		{
			Name: "commit",
			Do: func(ctx context.Context) error {
				return s.db.Table(in.Kind.TableName()).
					Where("id = ?", row.ID).
					Updates(map[string]interface{}{
						"content":       newContent,
						"thumbnail_url": newThumbURL,
					}).Error
			},
		},
	}

	if err := saga.Run(ctx, s.logger, steps); err != nil {
		return 0, err
	}
	return row.ID, nil
}
