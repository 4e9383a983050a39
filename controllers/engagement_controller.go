package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atelierhub/atelier/middleware"
	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/utils"
)

// EngagementController toggles likes and saves. Both are bare join rows:
// a row means liked/saved, toggling off deletes it.
type EngagementController struct {
	db *gorm.DB
}

func NewEngagementController(db *gorm.DB) *EngagementController {
	return &EngagementController{db: db}
}

func (e *EngagementController) bindTarget(ctx *gin.Context) (models.EntityKind, uint, bool) {
	kind := models.EntityKind(ctx.Param("kind"))
	if !kind.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40040, "unknown content kind")
		return "", 0, false
	}
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid id")
		return "", 0, false
	}
	var count int64
	err = e.db.Table(kind.TableName()).
		Where("id = ? AND is_deleted = ? AND is_published = ?", id, false, true).
		Count(&count).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to check entry")
		return "", 0, false
	}
	if count == 0 {
		utils.Error(ctx, http.StatusNotFound, 40440, "entry not found")
		return "", 0, false
	}
	return kind, uint(id), true
}

// ToggleLike flips the caller's like on an entry and returns the new state
// with the total count.
func (e *EngagementController) ToggleLike(ctx *gin.Context) {
	kind, id, ok := e.bindTarget(ctx)
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(ctx)

	var existing models.Like
	err := e.db.Where("entity_kind = ? AND entity_id = ? AND user_id = ?", kind, id, userID).
		Take(&existing).Error
	liked := false
	switch {
	case err == nil:
		if err := e.db.Delete(&existing).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to toggle like")
			return
		}
	case err == gorm.ErrRecordNotFound:
		row := models.Like{EntityKind: kind, EntityID: id, UserID: userID}
		if err := e.db.Create(&row).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to toggle like")
			return
		}
		liked = true
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to toggle like")
		return
	}

	var total int64
	_ = e.db.Model(&models.Like{}).
		Where("entity_kind = ? AND entity_id = ?", kind, id).Count(&total).Error
	utils.Success(ctx, gin.H{"liked": liked, "count": total})
}

// ToggleSave flips the caller's bookmark on an entry.
func (e *EngagementController) ToggleSave(ctx *gin.Context) {
	kind, id, ok := e.bindTarget(ctx)
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(ctx)

	var existing models.Save
	err := e.db.Where("entity_kind = ? AND entity_id = ? AND user_id = ?", kind, id, userID).
		Take(&existing).Error
	saved := false
	switch {
	case err == nil:
		if err := e.db.Delete(&existing).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to toggle save")
			return
		}
	case err == gorm.ErrRecordNotFound:
		row := models.Save{EntityKind: kind, EntityID: id, UserID: userID}
		if err := e.db.Create(&row).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to toggle save")
			return
		}
		saved = true
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to toggle save")
		return
	}
	utils.Success(ctx, gin.H{"saved": saved})
}

// MySaves lists the caller's bookmarks, newest first.
func (e *EngagementController) MySaves(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	var rows []models.Save
	if err := e.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to list saves")
		return
	}
	utils.Success(ctx, gin.H{"items": rows})
}
