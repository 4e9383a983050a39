package content

import (
	"context"
	"time"

	"github.com/atelierhub/atelier/models"
)

// Delete soft-deletes an entity. Its objects are not removed inline; they go
// to the orphan ledger and the sweeper reclaims them, so a slow storage
// backend cannot block the admin request.
func (s *Service) Delete(ctx context.Context, kind models.EntityKind, id uint) error {
	row, err := s.load(kind, id)
	if err != nil {
		return err
	}
	res := s.db.Table(kind.TableName()).
		Where("id = ? AND version = ? AND is_deleted = ?", id, row.Version, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"version":    row.Version + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	bucket := kind.Bucket()
	if bucket == "" {
		return nil
	}
	if key, ok := s.store.KeyFromURL(row.ThumbnailURL, bucket); ok {
		s.recordOrphan(bucket, key, "entity deleted")
	}
	for _, u := range ExtractEntityImages(row.Content, kind, id) {
		if key, ok := s.store.KeyFromURL(u, bucket); ok {
			s.recordOrphan(bucket, key, "entity deleted")
		}
	}
	return nil
}
