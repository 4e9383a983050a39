package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atelierhub/atelier/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Class{}, &models.Gallery{}, &models.News{},
		&models.Tag{}, &models.ContentTag{},
		&models.OrphanAsset{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClass(t *testing.T, db *gorm.DB, content, thumbnailURL string) *models.Class {
	t.Helper()
	row := models.Class{
		Slug:         fmt.Sprintf("class-%d", len(content)),
		Title:        "Watercolor Basics",
		Content:      content,
		ThumbnailURL: thumbnailURL,
		IsPublished:  true,
		Version:      1,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	return &row
}

func classURL(id uint, name string) string {
	return fmt.Sprintf("https://cdn.example.com/class/%d/content/%s.webp", id, name)
}

func classKey(id uint, name string) string {
	return fmt.Sprintf("%d/content/%s.webp", id, name)
}

func TestUpdateReplacesImages(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	row := seedClass(t, db, "", "")
	oldURL := classURL(row.ID, "img1")
	store.objects["class/"+classKey(row.ID, "img1")] = []byte("old")
	db.Model(row).Update("content", "![old]("+oldURL+")")

	err := svc.Update(context.Background(), UpdateInput{
		Kind:                models.KindClass,
		ID:                  row.ID,
		Title:               row.Title,
		Content:             "fresh ![n](TEMP_IMAGE_n1)",
		ContentImages:       []Upload{{Data: []byte("new")}},
		ContentImageTempIDs: []string{"n1"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if store.has("class", classKey(row.ID, "img1")) {
		t.Fatal("removed image still in store")
	}
	var got models.Class
	if err := db.Take(&got, row.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if strings.Contains(got.Content, "TEMP_IMAGE_") {
		t.Fatalf("placeholder survived commit: %q", got.Content)
	}
	urls := ExtractEntityImages(got.Content, models.KindClass, row.ID)
	if len(urls) != 1 {
		t.Fatalf("committed content references %d images, want 1", len(urls))
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}
}

func TestUpdateVersionConflictRollsBackUploads(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	row := seedClass(t, db, "original body", "")

	err := svc.Update(context.Background(), UpdateInput{
		Kind:                models.KindClass,
		ID:                  row.ID,
		Title:               "changed",
		Content:             "TEMP_IMAGE_a TEMP_IMAGE_b",
		ExpectedVersion:     99,
		ContentImages:       []Upload{{Data: []byte("1")}, {Data: []byte("2")}},
		ContentImageTempIDs: []string{"a", "b"},
	})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}

	if n := store.count(); n != 0 {
		t.Fatalf("%d uploaded objects survived rollback, want 0", n)
	}
	var got models.Class
	db.Take(&got, row.ID)
	if got.Content != "original body" || got.Version != 1 {
		t.Fatalf("row changed despite conflict: %q v%d", got.Content, got.Version)
	}
}

func TestUpdateVersionConflictKeepsReferencedImages(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	row := seedClass(t, db, "", "")
	oldURL := classURL(row.ID, "img1")
	store.objects["class/"+classKey(row.ID, "img1")] = []byte("old")
	db.Model(row).Update("content", "![old]("+oldURL+")")

	// the edit drops img1, but the stale version must abort before any
	// referenced object is touched
	err := svc.Update(context.Background(), UpdateInput{
		Kind:            models.KindClass,
		ID:              row.ID,
		Title:           row.Title,
		Content:         "no images anymore",
		ExpectedVersion: 99,
	})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}

	if !store.has("class", classKey(row.ID, "img1")) {
		t.Fatal("surviving row's image was deleted on a version conflict")
	}
	var got models.Class
	db.Take(&got, row.ID)
	if !strings.Contains(got.Content, oldURL) {
		t.Fatalf("row content lost its image reference: %q", got.Content)
	}
}

func TestUpdateThumbnailOldDeleteFailure(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	row := seedClass(t, db, "", "")
	oldKey := fmt.Sprintf("%d/thumb-legacy.webp", row.ID)
	oldURL := "https://cdn.example.com/class/" + oldKey
	store.objects["class/"+oldKey] = []byte("legacy")
	store.failDeleteKeys[oldKey] = true
	db.Model(row).Update("thumbnail_url", oldURL)

	err := svc.Update(context.Background(), UpdateInput{
		Kind:      models.KindClass,
		ID:        row.ID,
		Title:     row.Title,
		Thumbnail: &Upload{Data: []byte("new-thumb")},
	})
	if err == nil {
		t.Fatal("expected update to fail when the old thumbnail cannot be deleted")
	}

	newKey := fmt.Sprintf("%d/thumbnail.webp", row.ID)
	if store.has("class", newKey) {
		t.Fatal("new thumbnail object should have been compensated away")
	}
	var got models.Class
	db.Take(&got, row.ID)
	if got.ThumbnailURL != oldURL {
		t.Fatalf("thumbnail url = %q, want unchanged %q", got.ThumbnailURL, oldURL)
	}
}

func TestUpdateLeavesForeignObjectsAlone(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	row := seedClass(t, db, "", "")
	ownURL := classURL(row.ID, "mine")
	foreignURL := classURL(row.ID+50, "theirs")
	store.objects["class/"+classKey(row.ID, "mine")] = []byte("m")
	store.objects["class/"+classKey(row.ID+50, "theirs")] = []byte("t")
	db.Model(row).Update("content", "![a]("+ownURL+") ![b]("+foreignURL+")")

	err := svc.Update(context.Background(), UpdateInput{
		Kind:    models.KindClass,
		ID:      row.ID,
		Title:   row.Title,
		Content: "no images anymore",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if store.has("class", classKey(row.ID, "mine")) {
		t.Fatal("own stale image not deleted")
	}
	if !store.has("class", classKey(row.ID+50, "theirs")) {
		t.Fatal("foreign entity's object was deleted")
	}
}

func TestProcessTagsIdempotent(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 2; i++ {
		if err := ProcessTags(db, models.KindClass, 1, "oil, canvas"); err != nil {
			t.Fatalf("process tags: %v", err)
		}
	}
	var links int64
	db.Model(&models.ContentTag{}).Where("entity_kind = ? AND entity_id = ?", models.KindClass, 1).Count(&links)
	if links != 2 {
		t.Fatalf("link rows = %d, want 2", links)
	}
	var tags int64
	db.Model(&models.Tag{}).Count(&tags)
	if tags != 2 {
		t.Fatalf("tag rows = %d, want 2", tags)
	}
}

func TestCreateRollsBackRowOnUploadFailure(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	store.failUploadAfter = 1
	svc := NewService(db, store, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Kind:      models.KindClass,
		Title:     "Doomed",
		Thumbnail: &Upload{Data: []byte("t")},
	})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	var rows int64
	db.Model(&models.Class{}).Count(&rows)
	if rows != 0 {
		t.Fatalf("row count = %d after failed create, want 0", rows)
	}
}

func TestCreateResolvesContent(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	id, err := svc.Create(context.Background(), CreateInput{
		Kind:                models.KindClass,
		Title:               "Oil Painting 101",
		Content:             "start TEMP_IMAGE_x end",
		Tags:                "oil,beginner",
		IsPublished:         true,
		Thumbnail:           &Upload{Data: []byte("thumb")},
		ContentImages:       []Upload{{Data: []byte("pic")}},
		ContentImageTempIDs: []string{"x"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var got models.Class
	if err := db.Take(&got, id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Slug != "oil-painting-101" {
		t.Fatalf("slug = %q", got.Slug)
	}
	if got.ThumbnailURL == "" || strings.Contains(got.Content, "TEMP_IMAGE_") {
		t.Fatalf("create did not finish resolution: thumb=%q content=%q", got.ThumbnailURL, got.Content)
	}
	tags, err := TagNames(db, models.KindClass, got.ID)
	if err != nil || len(tags) != 2 {
		t.Fatalf("tags = %v, %v", tags, err)
	}
}

func TestDeleteSoftDeletesAndRecordsOrphans(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	row := seedClass(t, db, "", "https://cdn.example.com/class/1/thumbnail.webp")
	url := classURL(row.ID, "pic")
	db.Model(row).Update("content", "![p]("+url+")")

	if err := svc.Delete(context.Background(), models.KindClass, row.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Get(models.KindClass, row.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted entity still loads: %v", err)
	}
	var orphans int64
	db.Model(&models.OrphanAsset{}).Count(&orphans)
	if orphans != 2 {
		t.Fatalf("orphan rows = %d, want 2 (thumbnail + content image)", orphans)
	}
}

func TestSweeperReclaimsOrphans(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewService(db, store, nil)

	store.objects["class/9/content/z.webp"] = []byte("z")
	db.Create(&models.OrphanAsset{Bucket: "class", ObjectKey: "9/content/z.webp", Reason: "test"})

	svc.sweepOrphans(context.Background())

	if store.has("class", "9/content/z.webp") {
		t.Fatal("sweeper left the object behind")
	}
	var remaining int64
	db.Model(&models.OrphanAsset{}).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("orphan rows remaining = %d, want 0", remaining)
	}
}
