package content

import (
	"context"
	"time"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/saga"
	"github.com/atelierhub/atelier/storage"
)

// UpdateInput carries one admin edit submission.
type UpdateInput struct {
	Kind                models.EntityKind
	ID                  uint
	Title               string
	Description         string
	Category            string
	Content             string
	Tags                string
	IsPublished         bool
	ExpectedVersion     int
	Thumbnail           *Upload
	ContentImages       []Upload
	ContentImageTempIDs []string
}

// Update applies an edit in phases: thumbnail swap, pending-image resolution,
// tag relink, a version-guarded row commit, then stale-image deletion. A
// failing phase rolls earlier phases back; objects uploaded by this call are
// deleted, deletions that fail land in the orphan ledger.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	row, err := s.load(in.Kind, in.ID)
	if err != nil {
		return err
	}
	bucket := in.Kind.Bucket()
	expected := in.ExpectedVersion
	if expected == 0 {
		expected = row.Version
	}

	newThumbURL := row.ThumbnailURL
	newContent := in.Content
	var uploadedKeys []string
	var staleKeys []string

	steps := []saga.Step{
		{
			Name: "thumbnail",
			Do: func(ctx context.Context) error {
				if in.Thumbnail == nil || bucket == "" {
					return nil
				}
				key := storage.ThumbnailKey(in.ID)
				url, err := s.store.Upload(ctx, bucket, key, in.Thumbnail.Data, contentTypeOrWebp(in.Thumbnail.ContentType))
				if err != nil {
					return err
				}
				newThumbURL = url
				oldKey, ok := s.store.KeyFromURL(row.ThumbnailURL, bucket)
				if !ok || oldKey == key {
					return nil
				}
				if err := s.store.Delete(ctx, bucket, oldKey); err != nil {
					// The replacement cannot stand while the old object
					// lingers, so take the new upload back out.
					s.deleteOrOrphan(ctx, bucket, key, "thumbnail rollback")
					return err
				}
				return nil
			},
			// The fixed-path upload overwrites in place; deleting it on a
			// later failure would leave the stored URL dangling.
		},
		{
			Name: "content-images",
			Do: func(ctx context.Context) error {
				if bucket == "" {
					return nil
				}
				resolved, keys, err := ResolveTempImages(ctx, s.store, bucket, in.ID, in.Content, in.ContentImages, in.ContentImageTempIDs)
				uploadedKeys = keys
				if err != nil {
					return err
				}
				newContent = resolved
				return nil
			},
			Undo: func(ctx context.Context) error {
				for _, key := range uploadedKeys {
					s.deleteOrOrphan(ctx, bucket, key, "update rollback")
				}
				return nil
			},
		},
		{
			Name: "stale-images",
			Do: func(ctx context.Context) error {
				if bucket == "" {
					return nil
				}
				oldURLs := ExtractEntityImages(row.Content, in.Kind, in.ID)
				newURLs := ExtractEntityImages(newContent, in.Kind, in.ID)
				removed, _ := Partition(oldURLs, newURLs)
				for _, u := range removed {
					key, ok := s.store.KeyFromURL(u, bucket)
					if !ok || !storage.OwnedByEntity(key, in.ID) {
						continue
					}
					staleKeys = append(staleKeys, key)
				}
				return nil
			},
		},
		{
			Name: "tags",
			Do: func(ctx context.Context) error {
				if err := UnlinkAll(s.db, in.Kind, in.ID); err != nil {
					return err
				}
				return ProcessTags(s.db, in.Kind, in.ID, in.Tags)
			},
		},
		{
			Name: "commit",
			Do: func(ctx context.Context) error {
				res := s.db.Table(in.Kind.TableName()).
					Where("id = ? AND version = ? AND is_deleted = ?", in.ID, expected, false).
					Updates(map[string]interface{}{
						"title":         in.Title,
						"description":   in.Description,
						"category":      in.Category,
						"content":       newContent,
						"thumbnail_url": newThumbURL,
						"is_published":  in.IsPublished,
						"version":       expected + 1,
						"updated_at":    time.Now(),
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return ErrVersionConflict
				}
				return nil
			},
		},
	}

	if err := saga.Run(ctx, s.logger, steps); err != nil {
		return err
	}

	// Stale objects go only after the commit: until the new row version is in
	// place, a conflict aborts the update and the surviving row still
	// references them.
	for _, key := range staleKeys {
		s.deleteOrOrphan(ctx, bucket, key, "stale after update")
	}
	return nil
}
