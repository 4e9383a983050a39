package content

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeStore is an in-memory object store. Failure hooks let tests break
// specific operations.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	failUploadAfter int // fail the Nth upload (1-based); 0 disables
	uploads         int
	failDeleteKeys  map[string]bool
	deleted         []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:        map[string][]byte{},
		failDeleteKeys: map[string]bool{},
	}
}

func (f *fakeStore) objectKey(bucket, key string) string {
	return bucket + "/" + key
}

func (f *fakeStore) Upload(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.failUploadAfter > 0 && f.uploads >= f.failUploadAfter {
		return "", fmt.Errorf("upload refused")
	}
	f.objects[f.objectKey(bucket, key)] = body
	return "https://cdn.example.com/" + bucket + "/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeleteKeys[key] {
		return fmt.Errorf("delete refused")
	}
	delete(f.objects, f.objectKey(bucket, key))
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) KeyFromURL(rawURL, bucket string) (string, bool) {
	prefix := "https://cdn.example.com/" + bucket + "/"
	if strings.HasPrefix(rawURL, prefix) {
		return strings.TrimPrefix(rawURL, prefix), true
	}
	return "", false
}

func (f *fakeStore) has(bucket, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[f.objectKey(bucket, key)]
	return ok
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
