package content

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/storage"
)

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	htmlImagePattern     = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
)

// ExtractEntityImages returns, in first-appearance order and without
// duplicates, every image URL embedded in content (markdown or HTML syntax)
// that belongs to the given entity's storage namespace. URLs pointing at
// other entities, other buckets, or non-webp objects are ignored.
func ExtractEntityImages(body string, kind models.EntityKind, entityID uint) []string {
	bucket := kind.Bucket()
	if bucket == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range allImageURLs(body) {
		if !ownedByEntity(raw, bucket, entityID) {
			continue
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		out = append(out, raw)
	}
	return out
}

func allImageURLs(body string) []string {
	var urls []string
	for _, m := range markdownImagePattern.FindAllStringSubmatch(body, -1) {
		urls = append(urls, m[1])
	}
	for _, m := range htmlImagePattern.FindAllStringSubmatch(body, -1) {
		urls = append(urls, m[1])
	}
	return urls
}

// ownedByEntity accepts both path-style URLs, where the bucket is the first
// path segment, and virtual-hosted URLs, where the host starts with
// "{bucket}.s3.".
func ownedByEntity(raw, bucket string, entityID uint) bool {
	if !strings.HasSuffix(strings.ToLower(raw), ".webp") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	id := strconv.FormatUint(uint64(entityID), 10)
	path := strings.TrimPrefix(u.Path, "/")
	if strings.HasPrefix(u.Host, bucket+".s3.") {
		return inEntityCategories(path, id)
	}
	// Path-style and custom public base URLs both carry the bucket as the
	// first path segment; anything else is not ours.
	if rest, ok := strings.CutPrefix(path, bucket+"/"); ok {
		return inEntityCategories(rest, id)
	}
	return false
}

func inEntityCategories(rest, id string) bool {
	for _, cat := range []string{storage.CategoryContent, storage.CategoryImages} {
		if strings.HasPrefix(rest, id+"/"+cat+"/") {
			return true
		}
	}
	return false
}
