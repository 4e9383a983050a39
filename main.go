package main

import (
	"context"
	"time"

	"github.com/atelierhub/atelier/config"
	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/routes"
	"github.com/atelierhub/atelier/services/content"
	"github.com/atelierhub/atelier/services/inquiry"
	"github.com/atelierhub/atelier/services/settings"
	"github.com/atelierhub/atelier/storage"
	"github.com/atelierhub/atelier/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Class{}, &models.Gallery{}, &models.News{},
		&models.Tag{}, &models.ContentTag{},
		&models.Like{}, &models.Save{},
		&models.Inquiry{}, &models.InquiryMessage{},
		&models.Setting{}, &models.OrphanAsset{},
		&models.PageView{},
	)

	store, err := storage.NewS3Store(cfg)
	if err != nil {
		utils.Sugar.Fatalf("object storage init failed: %v", err)
	}

	settingsSvc := settings.NewService(db)
	if err := settingsSvc.EnsureDefaults(); err != nil {
		utils.Sugar.Fatalf("settings seed failed: %v", err)
	}
	contentSvc := content.NewService(db, store, utils.Sugar)
	inquirySvc := inquiry.NewService(db, utils.Sugar)

	// Retry deletions that storage refused during rollbacks
	contentSvc.StartOrphanSweeper(context.Background(), 10*time.Minute)

	r := routes.SetupRouter(db, routes.Services{
		Content:  contentSvc,
		Inquiry:  inquirySvc,
		Settings: settingsSvc,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
