package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/settings"
	"github.com/atelierhub/atelier/utils"
)

// SettingsController exposes site settings: the public notice read and the
// admin key/value management.
type SettingsController struct {
	svc *settings.Service
}

func NewSettingsController(svc *settings.Service) *SettingsController {
	return &SettingsController{svc: svc}
}

// Notice returns the site-wide notice with its version, so clients can show
// a "new" badge only when the text actually changed.
func (s *SettingsController) Notice(ctx *gin.Context) {
	row, err := s.svc.Get(models.SettingNotice)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load notice")
		return
	}
	utils.Success(ctx, gin.H{"value": row.Value, "version": row.Version})
}

// List returns every setting for the admin dashboard.
func (s *SettingsController) List(ctx *gin.Context) {
	rows, err := s.svc.All()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load settings")
		return
	}
	utils.Success(ctx, gin.H{"items": rows})
}

// Put writes one setting value.
func (s *SettingsController) Put(ctx *gin.Context) {
	type request struct {
		Value string `json:"value"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	row, err := s.svc.Put(ctx.Param("key"), req.Value)
	if errors.Is(err, settings.ErrUnknownKey) {
		utils.Error(ctx, http.StatusBadRequest, 40060, "unknown setting key")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to save setting")
		return
	}
	utils.Success(ctx, row)
}
