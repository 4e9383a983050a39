package storage

import (
	"testing"

	appcfg "github.com/atelierhub/atelier/config"
)

func newTestStore(t *testing.T, endpoint, publicBaseURL string) *S3Store {
	t.Helper()
	store, err := NewS3Store(appcfg.AppConfig{
		S3Region:          "ap-northeast-2",
		S3AccessKeyID:     "test-access",
		S3SecretAccessKey: "test-secret",
		S3Endpoint:        endpoint,
		S3PublicBaseURL:   publicBaseURL,
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestPublicURLAndKeyFromURLRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		endpoint      string
		publicBaseURL string
	}{
		{name: "virtual hosted"},
		{name: "custom endpoint", endpoint: "https://minio.internal:9000"},
		{name: "public domain", endpoint: "https://minio.internal:9000", publicBaseURL: "https://cdn.atelier.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, tt.endpoint, tt.publicBaseURL)
			key := ContentImageKey(42, "abc-123")
			url := store.PublicURL("class", key)
			got, ok := store.KeyFromURL(url, "class")
			if !ok || got != key {
				t.Fatalf("KeyFromURL(%q) = %q, %v; want %q", url, got, ok, key)
			}
		})
	}
}

func TestKeyFromURLRejectsForeign(t *testing.T) {
	store := newTestStore(t, "", "https://cdn.atelier.example")
	foreign := []string{
		"https://elsewhere.example.com/class/1/content/a.webp",
		"https://cdn.atelier.example/gallery/1/content/a.webp", // wrong bucket
		"",
	}
	for _, u := range foreign {
		if key, ok := store.KeyFromURL(u, "class"); ok {
			t.Fatalf("KeyFromURL(%q) = %q, want rejection", u, key)
		}
	}
}

func TestKeyBuilders(t *testing.T) {
	if got := ThumbnailKey(7); got != "7/thumbnail.webp" {
		t.Fatalf("ThumbnailKey = %q", got)
	}
	if got := ContentImageKey(7, "u1"); got != "7/content/u1.webp" {
		t.Fatalf("ContentImageKey = %q", got)
	}
	if got := GalleryImageKey(7, "u2"); got != "7/images/u2.webp" {
		t.Fatalf("GalleryImageKey = %q", got)
	}
}

func TestOwnedByEntity(t *testing.T) {
	tests := []struct {
		key      string
		entityID uint
		want     bool
	}{
		{"7/content/a.webp", 7, true},
		{"7/thumbnail.webp", 7, true},
		{"70/content/a.webp", 7, false},
		{"8/content/a.webp", 7, false},
		{"content/a.webp", 7, false},
		{"7", 7, false},
	}
	for _, tt := range tests {
		if got := OwnedByEntity(tt.key, tt.entityID); got != tt.want {
			t.Fatalf("OwnedByEntity(%q, %d) = %v, want %v", tt.key, tt.entityID, got, tt.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/7/content/a.webp", "7/content/a.webp"},
		{"7//content//a.webp", "7/content/a.webp"},
		{`7\content\a.webp`, "7/content/a.webp"},
		{"  7/a.webp  ", "7/a.webp"},
	}
	for _, tt := range tests {
		if got := normalizeKey(tt.in); got != tt.want {
			t.Fatalf("normalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
