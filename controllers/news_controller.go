package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/content"
	"github.com/atelierhub/atelier/utils"
)

// News bodies carry no managed storage objects, so the CMS edits them as
// plain JSON instead of multipart forms.

type newsRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Content     string `json:"content"`
	Tags        string `json:"tags"`
	IsPublished bool   `json:"is_published"`
	Version     int    `json:"version"`
}

// CreateNews handles admin JSON creation of a news entry.
func (c *ContentController) CreateNews(ctx *gin.Context) {
	var req newsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	id, err := c.svc.Create(ctx.Request.Context(), content.CreateInput{
		Kind:        models.KindNews,
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Content:     utils.Sanitize(req.Content),
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		c.respondWorkflowError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(contentCachePrefix(models.KindNews))
	utils.Success(ctx, gin.H{"id": id})
}

// UpdateNews handles admin JSON edits of a news entry.
func (c *ContentController) UpdateNews(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
		return
	}
	var req newsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	err = c.svc.Update(ctx.Request.Context(), content.UpdateInput{
		Kind:            models.KindNews,
		ID:              uint(id),
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Content:         utils.Sanitize(req.Content),
		Tags:            req.Tags,
		IsPublished:     req.IsPublished,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		c.respondWorkflowError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(contentCachePrefix(models.KindNews))
	utils.Success(ctx, gin.H{"id": id})
}
