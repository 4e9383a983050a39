package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/content"
	"github.com/atelierhub/atelier/utils"
)

const maxImageBytes = 10 << 20

// ContentController serves the three content kinds: classes, galleries and
// news. Kind is bound at route registration.
type ContentController struct {
	svc *content.Service
}

func NewContentController(svc *content.Service) *ContentController {
	return &ContentController{svc: svc}
}

func contentCachePrefix(kind models.EntityKind) string {
	return "cache:content:" + string(kind) + ":"
}

// List serves the public, published-only listing with Redis caching.
func (c *ContentController) List(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		page := atoiDefault(ctx.Query("page"), 1)
		pageSize := atoiDefault(ctx.Query("page_size"), 12)
		category := strings.TrimSpace(ctx.Query("category"))

		cacheKey := contentCachePrefix(kind) + "list:" + category + ":" +
			strconv.Itoa(page) + ":" + strconv.Itoa(pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}

		rows, total, err := c.svc.List(kind, content.ListOptions{
			Category: category,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list entries")
			return
		}

		payload := gin.H{
			"items": rows,
			"pagination": gin.H{
				"page":      page,
				"page_size": pageSize,
				"total":     total,
			},
		}
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Minute)
		utils.Success(ctx, payload)
	}
}

// Get serves one published entry by slug, with its tags, cached.
func (c *ContentController) Get(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		slug := strings.TrimSpace(ctx.Param("slug"))
		if slug == "" {
			utils.Error(ctx, http.StatusBadRequest, 40030, "missing slug")
			return
		}

		cacheKey := contentCachePrefix(kind) + "slug:" + slug
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}

		row, tags, err := c.svc.GetBySlug(kind, slug, false)
		if errors.Is(err, content.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "entry not found")
			return
		}
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load entry")
			return
		}

		payload := gin.H{"entry": row, "tags": tags}
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Minute)
		utils.Success(ctx, payload)
	}
}

// AdminList includes drafts for the CMS.
func (c *ContentController) AdminList(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rows, total, err := c.svc.List(kind, content.ListOptions{
			Category:      strings.TrimSpace(ctx.Query("category")),
			Page:          atoiDefault(ctx.Query("page"), 1),
			PageSize:      atoiDefault(ctx.Query("page_size"), 20),
			IncludeDrafts: true,
		})
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list entries")
			return
		}
		utils.Success(ctx, gin.H{"items": rows, "total": total})
	}
}

// Create handles the admin multipart creation form.
func (c *ContentController) Create(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		form, ok := c.bindContentForm(ctx)
		if !ok {
			return
		}
		id, err := c.svc.Create(ctx.Request.Context(), content.CreateInput{
			Kind:                kind,
			Slug:                form.slug,
			Title:               form.title,
			Description:         form.description,
			Category:            form.category,
			Content:             form.content,
			Tags:                form.tags,
			IsPublished:         form.isPublished,
			Thumbnail:           form.thumbnail,
			ContentImages:       form.contentImages,
			ContentImageTempIDs: form.tempIDs,
		})
		if err != nil {
			c.respondWorkflowError(ctx, err)
			return
		}
		utils.InvalidateByPrefix(contentCachePrefix(kind))
		utils.Success(ctx, gin.H{"id": id})
	}
}

// Update handles the admin multipart edit form.
func (c *ContentController) Update(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
		if err != nil || id == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
			return
		}
		form, ok := c.bindContentForm(ctx)
		if !ok {
			return
		}
		err = c.svc.Update(ctx.Request.Context(), content.UpdateInput{
			Kind:                kind,
			ID:                  uint(id),
			Title:               form.title,
			Description:         form.description,
			Category:            form.category,
			Content:             form.content,
			Tags:                form.tags,
			IsPublished:         form.isPublished,
			ExpectedVersion:     form.version,
			Thumbnail:           form.thumbnail,
			ContentImages:       form.contentImages,
			ContentImageTempIDs: form.tempIDs,
		})
		if err != nil {
			c.respondWorkflowError(ctx, err)
			return
		}
		utils.InvalidateByPrefix(contentCachePrefix(kind))
		utils.Success(ctx, gin.H{"id": id})
	}
}

// Delete soft-deletes an entry.
func (c *ContentController) Delete(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
		if err != nil || id == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
			return
		}
		if err := c.svc.Delete(ctx.Request.Context(), kind, uint(id)); err != nil {
			c.respondWorkflowError(ctx, err)
			return
		}
		utils.InvalidateByPrefix(contentCachePrefix(kind))
		utils.Success(ctx, gin.H{"id": id})
	}
}

// UploadGalleryImage stores a standalone image for embedding into a gallery.
func (c *ContentController) UploadGalleryImage(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
		return
	}
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "missing image file")
		return
	}
	upload, err := readUpload(fileHeader)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "unreadable image file")
		return
	}
	url, err := c.svc.UploadGalleryImage(ctx.Request.Context(), uint(id), *upload)
	if err != nil {
		c.respondWorkflowError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"url": url})
}

type contentForm struct {
	slug          string
	title         string
	description   string
	category      string
	content       string
	tags          string
	isPublished   bool
	version       int
	thumbnail     *content.Upload
	contentImages []content.Upload
	tempIDs       []string
}

func (c *ContentController) bindContentForm(ctx *gin.Context) (*contentForm, bool) {
	if err := ctx.Request.ParseMultipartForm(32 << 20); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid multipart form")
		return nil, false
	}

	form := &contentForm{
		slug:        strings.TrimSpace(ctx.PostForm("slug")),
		title:       strings.TrimSpace(ctx.PostForm("title")),
		description: strings.TrimSpace(ctx.PostForm("description")),
		category:    strings.TrimSpace(ctx.PostForm("category")),
		content:     utils.Sanitize(ctx.PostForm("content")),
		tags:        ctx.PostForm("tags"),
		isPublished: ctx.PostForm("isPublished") == "true",
		version:     atoiDefault(ctx.PostForm("version"), 0),
	}
	if form.title == "" {
		utils.ErrorFields(ctx, http.StatusBadRequest, 40035, "validation failed",
			map[string][]string{"title": {"title is required"}})
		return nil, false
	}

	if fh, err := ctx.FormFile("thumbnail"); err == nil {
		upload, err := readUpload(fh)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40033, "unreadable thumbnail file")
			return nil, false
		}
		form.thumbnail = upload
	}

	form.tempIDs = ctx.PostFormArray("contentImageTempIds[]")
	if len(form.tempIDs) == 0 {
		form.tempIDs = ctx.PostFormArray("contentImageTempIds")
	}
	files := ctx.Request.MultipartForm.File["contentImages[]"]
	if len(files) == 0 {
		files = ctx.Request.MultipartForm.File["contentImages"]
	}
	for _, fh := range files {
		upload, err := readUpload(fh)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40033, "unreadable content image")
			return nil, false
		}
		form.contentImages = append(form.contentImages, *upload)
	}
	return form, true
}

func readUpload(fh *multipart.FileHeader) (*content.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, err
	}
	return &content.Upload{Data: data, ContentType: fh.Header.Get("Content-Type")}, nil
}

func (c *ContentController) respondWorkflowError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40430, "entry not found")
	case errors.Is(err, content.ErrVersionConflict):
		utils.Error(ctx, http.StatusConflict, 40930, "entry was modified by someone else, reload and retry")
	case errors.Is(err, content.ErrSlugTaken):
		utils.Error(ctx, http.StatusConflict, 40931, "slug already in use")
	case errors.Is(err, content.ErrTempIDMismatch):
		utils.Error(ctx, http.StatusBadRequest, 40036, "image files and placeholders do not match")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50033, "content update failed")
	}
}

func atoiDefault(s string, def int) int {
	v := strings.TrimSpace(s)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
