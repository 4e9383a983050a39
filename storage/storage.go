// Package storage provides the object store abstraction used by the content
// update workflow. Objects live at {bucket}/{entityID}/{category}/... and
// ownership is decided purely by the {entityID}/ key prefix.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Asset categories inside an entity's key prefix.
const (
	CategoryThumbnail = "thumbnail"
	CategoryContent   = "content"
	CategoryImages    = "images"
)

// ObjectStore uploads and deletes objects in a bucket and maps public URLs
// back to object keys.
type ObjectStore interface {
	// Upload stores body under bucket/key and returns the public URL.
	Upload(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error)
	// Delete removes bucket/key. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error
	// KeyFromURL resolves a public URL back to an object key within bucket.
	// Returns false for URLs that do not belong to this store/bucket.
	KeyFromURL(rawURL, bucket string) (string, bool)
}

// ThumbnailKey returns the fixed thumbnail key for an entity. Uploading to it
// overwrites the previous thumbnail object.
func ThumbnailKey(entityID uint) string {
	return fmt.Sprintf("%d/%s.webp", entityID, CategoryThumbnail)
}

// ContentImageKey returns the key for a body image of an entity.
func ContentImageKey(entityID uint, assetID string) string {
	return fmt.Sprintf("%d/%s/%s.webp", entityID, CategoryContent, assetID)
}

// GalleryImageKey returns the key for a gallery cover image.
func GalleryImageKey(entityID uint, assetID string) string {
	return fmt.Sprintf("%d/%s/%s.webp", entityID, CategoryImages, assetID)
}

// OwnedByEntity reports whether key sits under the entity's prefix. Deletion
// paths must check this before removing anything, so a buggy or crafted URL
// list can never reach another entity's objects.
func OwnedByEntity(key string, entityID uint) bool {
	return strings.HasPrefix(key, strconv.FormatUint(uint64(entityID), 10)+"/")
}
