package content

import (
	"strings"

	"gorm.io/gorm"

	"github.com/atelierhub/atelier/models"
)

// SplitTags parses a comma separated tag string into trimmed, de-duplicated
// names, preserving first-appearance order.
func SplitTags(raw string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// UnlinkAll removes every tag association for the entity. Tag rows themselves
// are left in place for reuse.
func UnlinkAll(db *gorm.DB, kind models.EntityKind, entityID uint) error {
	return db.Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Delete(&models.ContentTag{}).Error
}

// ProcessTags ensures a Tag row exists for each name and links it to the
// entity. Calling it twice with the same input is a no-op for the second call.
func ProcessTags(db *gorm.DB, kind models.EntityKind, entityID uint, raw string) error {
	for _, name := range SplitTags(raw) {
		var tag models.Tag
		if err := db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		link := models.ContentTag{EntityKind: kind, EntityID: entityID, TagID: tag.ID}
		if err := db.Where(link).FirstOrCreate(&models.ContentTag{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// TagNames returns the tag names linked to the entity.
func TagNames(db *gorm.DB, kind models.EntityKind, entityID uint) ([]string, error) {
	var names []string
	err := db.Model(&models.Tag{}).
		Joins("JOIN content_tags ON content_tags.tag_id = tags.id").
		Where("content_tags.entity_kind = ? AND content_tags.entity_id = ?", kind, entityID).
		Order("tags.id").
		Pluck("tags.name", &names).Error
	return names, err
}
