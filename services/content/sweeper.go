package content

import (
	"context"
	"time"

	"github.com/atelierhub/atelier/models"
)

const sweepBatchSize = 50

// StartOrphanSweeper runs a background loop that retries deletion of objects
// left behind by failed rollbacks and soft-deleted entities. It stops when
// ctx is cancelled.
func (s *Service) StartOrphanSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepOrphans(ctx)
			}
		}
	}()
}

func (s *Service) sweepOrphans(ctx context.Context) {
	var orphans []models.OrphanAsset
	if err := s.db.Order("id").Limit(sweepBatchSize).Find(&orphans).Error; err != nil {
		if s.logger != nil {
			s.logger.Warnf("orphan sweep query failed: %v", err)
		}
		return
	}
	for _, o := range orphans {
		if err := s.store.Delete(ctx, o.Bucket, o.ObjectKey); err != nil {
			if s.logger != nil {
				s.logger.Warnf("orphan sweep delete failed bucket=%s key=%s err=%v", o.Bucket, o.ObjectKey, err)
			}
			continue
		}
		if err := s.db.Delete(&models.OrphanAsset{}, o.ID).Error; err != nil && s.logger != nil {
			s.logger.Warnf("orphan sweep row delete failed id=%d err=%v", o.ID, err)
		}
	}
}
