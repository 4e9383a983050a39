package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atelierhub/atelier/config"
	"github.com/atelierhub/atelier/controllers"
	"github.com/atelierhub/atelier/middleware"
	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/content"
	"github.com/atelierhub/atelier/services/inquiry"
	"github.com/atelierhub/atelier/services/settings"
	"github.com/atelierhub/atelier/utils"
)

// Services carries the wired service layer into route registration.
type Services struct {
	Content  *content.Service
	Inquiry  *inquiry.Service
	Settings *settings.Service
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, svc Services) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, svc.Settings)
	contentController := controllers.NewContentController(svc.Content)
	engagementController := controllers.NewEngagementController(db)
	inquiryController := controllers.NewInquiryController(svc.Inquiry)
	settingsController := controllers.NewSettingsController(svc.Settings)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(10))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.POST("/send-email-code", authController.SendEmailCode)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public content reads
	api.GET("/classes", contentController.List(models.KindClass))
	api.GET("/classes/:slug", contentController.Get(models.KindClass))
	api.GET("/galleries", contentController.List(models.KindGallery))
	api.GET("/galleries/:slug", contentController.Get(models.KindGallery))
	api.GET("/news", contentController.List(models.KindNews))
	api.GET("/news/:slug", contentController.Get(models.KindNews))
	api.GET("/settings/notice", settingsController.Notice)

	// Authenticated user routes
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware(), middleware.MaintenanceGate(svc.Settings))
	protected.POST("/content/:kind/:id/like", engagementController.ToggleLike)
	protected.POST("/content/:kind/:id/save", engagementController.ToggleSave)
	protected.GET("/users/me/saves", engagementController.MySaves)
	protected.POST("/inquiries", inquiryController.Create)
	protected.GET("/inquiries", inquiryController.ListMine)
	protected.GET("/inquiries/:id", inquiryController.Get)
	protected.POST("/inquiries/:id/messages", inquiryController.Reply)

	// Admin CMS routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	for _, kind := range []models.EntityKind{models.KindClass, models.KindGallery} {
		group := admin.Group("/" + kind.TableName())
		group.GET("", contentController.AdminList(kind))
		group.POST("", contentController.Create(kind))
		group.PUT("/:id", contentController.Update(kind))
		group.DELETE("/:id", contentController.Delete(kind))
	}
	admin.POST("/galleries/:id/images", contentController.UploadGalleryImage)
	admin.GET("/news", contentController.AdminList(models.KindNews))
	admin.POST("/news", contentController.CreateNews)
	admin.PUT("/news/:id", contentController.UpdateNews)
	admin.DELETE("/news/:id", contentController.Delete(models.KindNews))
	admin.GET("/inquiries", inquiryController.ListAll)
	admin.POST("/inquiries/:id/messages", inquiryController.Reply)
	admin.POST("/inquiries/:id/close", inquiryController.Close)
	admin.GET("/settings", settingsController.List)
	admin.PUT("/settings/:key", settingsController.Put)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
