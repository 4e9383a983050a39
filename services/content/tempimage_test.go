package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atelierhub/atelier/models"
)

func TestResolveTempImagesRoundTrip(t *testing.T) {
	store := newFakeStore()
	body := "before ![a](TEMP_IMAGE_one) middle ![b](TEMP_IMAGE_two) after"
	files := []Upload{
		{Data: []byte("img1"), ContentType: "image/webp"},
		{Data: []byte("img2"), ContentType: "image/webp"},
	}

	resolved, keys, err := ResolveTempImages(context.Background(), store, "class", 7, body, files, []string{"one", "two"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("uploaded %d keys, want 2", len(keys))
	}
	if strings.Contains(resolved, "TEMP_IMAGE_") {
		t.Fatalf("placeholders survived: %q", resolved)
	}
	// every substituted URL must round-trip through the extractor
	urls := ExtractEntityImages(resolved, models.KindClass, 7)
	if len(urls) != 2 {
		t.Fatalf("extractor found %d urls in resolved content, want 2: %q", len(urls), resolved)
	}
	for _, key := range keys {
		if !store.has("class", key) {
			t.Fatalf("object %s missing from store", key)
		}
	}
}

func TestResolveTempImagesTokenMetacharacters(t *testing.T) {
	store := newFakeStore()
	body := "x TEMP_IMAGE_a.b+c x"
	resolved, _, err := ResolveTempImages(context.Background(), store, "class", 1, body,
		[]Upload{{Data: []byte("d")}}, []string{"a.b+c"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if strings.Contains(resolved, "TEMP_IMAGE_") {
		t.Fatalf("metacharacter token not replaced: %q", resolved)
	}
}

func TestResolveTempImagesMismatch(t *testing.T) {
	store := newFakeStore()
	_, _, err := ResolveTempImages(context.Background(), store, "class", 1, "body",
		[]Upload{{Data: []byte("d")}}, nil)
	if !errors.Is(err, ErrTempIDMismatch) {
		t.Fatalf("err = %v, want ErrTempIDMismatch", err)
	}
}

func TestResolveTempImagesReportsPartialUploads(t *testing.T) {
	store := newFakeStore()
	store.failUploadAfter = 2
	_, keys, err := ResolveTempImages(context.Background(), store, "class", 1,
		"TEMP_IMAGE_a TEMP_IMAGE_b",
		[]Upload{{Data: []byte("1")}, {Data: []byte("2")}}, []string{"a", "b"})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if len(keys) != 1 {
		t.Fatalf("reported %d uploaded keys, want the 1 that succeeded", len(keys))
	}
}

func TestResolveTempImagesNoop(t *testing.T) {
	store := newFakeStore()
	resolved, keys, err := ResolveTempImages(context.Background(), store, "class", 1, "plain body", nil, nil)
	if err != nil || resolved != "plain body" || keys != nil {
		t.Fatalf("noop resolve = %q, %v, %v", resolved, keys, err)
	}
}
