package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atelierhub/atelier/config"
	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/utils"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(ctx *gin.Context) { utils.Success(ctx, gin.H{"ok": true}) })
	return r
}

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	config.SetForTest(config.AppConfig{JWTSecret: "test"})
	// one request per minute with burst 1
	r := newTestRouter(RateLimit(1))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", second.Code)
	}
}

func TestAuthRequiredRejectsMissingAndBadTokens(t *testing.T) {
	config.SetForTest(config.AppConfig{JWTSecret: "test-secret"})
	r := newTestRouter(AuthRequired())

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer not-a-jwt"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthRequiredAcceptsValidTokenAndFlagsAdmin(t *testing.T) {
	config.SetForTest(config.AppConfig{
		JWTSecret:      "test-secret",
		AdminUsernames: []string{"curator"},
	})
	token, err := utils.GenerateToken(3, "curator", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthRequired())
	r.GET("/ping", func(ctx *gin.Context) {
		if CurrentUserID(ctx) != 3 {
			t.Errorf("user id = %d, want 3", CurrentUserID(ctx))
		}
		if !ctx.GetBool(ContextIsAdminKey) {
			t.Error("admin flag not set for configured admin username")
		}
		utils.Success(ctx, nil)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token = %d, want 200", rec.Code)
	}
}

func TestPageViewRecorderCountsContentReads(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.PageView{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PageViewRecorder(db))
	r.GET("/api/v1/classes/:slug", func(ctx *gin.Context) { utils.Success(ctx, nil) })
	r.GET("/health", func(ctx *gin.Context) { utils.Success(ctx, nil) })

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/classes/watercolor", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d, want 200", rec.Code)
	}

	var row models.PageView
	if err := db.Where("path = ?", "/api/v1/classes/watercolor").Take(&row).Error; err != nil {
		t.Fatalf("page view row missing: %v", err)
	}
	if row.Count != 2 {
		t.Fatalf("count = %d, want 2", row.Count)
	}
	var rows int64
	db.Model(&models.PageView{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("page view rows = %d, want 1 (health must not be recorded)", rows)
	}
}

func TestAdminRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(ctx *gin.Context) { ctx.Set(ContextIsAdminKey, false) }, AdminRequired())
	r.GET("/ping", func(ctx *gin.Context) { utils.Success(ctx, nil) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin = %d, want 403", rec.Code)
	}
}
