package inquiry

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atelierhub/atelier/config"
	"github.com/atelierhub/atelier/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	config.SetForTest(config.AppConfig{JWTSecret: "test"})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Inquiry{}, &models.InquiryMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	user := models.User{Username: "visitor", Email: ""}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewService(db, nil), db
}

func TestReplyMovesPendingToAnswered(t *testing.T) {
	svc, _ := newTestService(t)

	inq, err := svc.Create(1, "Enrollment question", "When does the spring class start?")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inq.Status != models.InquiryStatusPending {
		t.Fatalf("status = %q, want pending", inq.Status)
	}

	if _, err := svc.Reply(inq.ID, 2, models.InquiryAuthorAdmin, "It starts in March."); err != nil {
		t.Fatalf("admin reply: %v", err)
	}

	got, err := svc.Get(inq.ID, 0, true)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.InquiryStatusAnswered {
		t.Fatalf("status = %q, want answered", got.Status)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(got.Messages))
	}
	if !got.LastActivityAt.After(inq.LastActivityAt) && !got.LastActivityAt.Equal(inq.LastActivityAt) {
		t.Fatal("LastActivityAt not advanced")
	}
}

func TestUserReplyReopensAnswered(t *testing.T) {
	svc, _ := newTestService(t)

	inq, _ := svc.Create(1, "Question", "first")
	svc.Reply(inq.ID, 2, models.InquiryAuthorAdmin, "answer")

	if _, err := svc.Reply(inq.ID, 1, models.InquiryAuthorUser, "follow-up"); err != nil {
		t.Fatalf("user reply: %v", err)
	}
	got, _ := svc.Get(inq.ID, 0, true)
	if got.Status != models.InquiryStatusPending {
		t.Fatalf("status = %q, want pending after user follow-up", got.Status)
	}
}

func TestClosedInquiryRejectsReplies(t *testing.T) {
	svc, _ := newTestService(t)

	inq, _ := svc.Create(1, "Question", "first")
	if err := svc.Close(inq.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.Reply(inq.ID, 2, models.InquiryAuthorAdmin, "too late"); !errors.Is(err, ErrClosed) {
		t.Fatalf("admin reply on closed = %v, want ErrClosed", err)
	}
	if _, err := svc.Reply(inq.ID, 1, models.InquiryAuthorUser, "hello?"); !errors.Is(err, ErrClosed) {
		t.Fatalf("user reply on closed = %v, want ErrClosed", err)
	}

	got, _ := svc.Get(inq.ID, 0, true)
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, closed ticket must not grow", len(got.Messages))
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _ := newTestService(t)

	inq, _ := svc.Create(1, "Mine", "body")

	if _, err := svc.Get(inq.ID, 7, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger read = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(inq.ID, 1, false); err != nil {
		t.Fatalf("owner read = %v", err)
	}
	if _, err := svc.Get(inq.ID, 7, true); err != nil {
		t.Fatalf("admin read = %v", err)
	}
}

func TestReplyByNonOwnerRejected(t *testing.T) {
	svc, _ := newTestService(t)

	inq, _ := svc.Create(1, "Mine", "body")
	if _, err := svc.Reply(inq.ID, 7, models.InquiryAuthorUser, "hijack"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
