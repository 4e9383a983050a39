package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierhub/atelier/middleware"
	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/inquiry"
	"github.com/atelierhub/atelier/utils"
)

// InquiryController exposes the support ticket endpoints.
type InquiryController struct {
	svc *inquiry.Service
}

func NewInquiryController(svc *inquiry.Service) *InquiryController {
	return &InquiryController{svc: svc}
}

// Create opens a ticket with its first message.
func (i *InquiryController) Create(ctx *gin.Context) {
	type request struct {
		Subject string `json:"subject" binding:"required,max=255"`
		Content string `json:"content" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	inq, err := i.svc.Create(middleware.CurrentUserID(ctx),
		strings.TrimSpace(req.Subject), utils.Sanitize(req.Content))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create inquiry")
		return
	}
	utils.Success(ctx, inq)
}

// ListMine returns the caller's tickets.
func (i *InquiryController) ListMine(ctx *gin.Context) {
	items, err := i.svc.ListForUser(middleware.CurrentUserID(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list inquiries")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Get returns one ticket with its thread. Admins see every ticket, users
// only their own.
func (i *InquiryController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
		return
	}
	inq, err := i.svc.Get(uint(id), middleware.CurrentUserID(ctx), ctx.GetBool(middleware.ContextIsAdminKey))
	if err != nil {
		i.respondError(ctx, err)
		return
	}
	utils.Success(ctx, inq)
}

// Reply appends a message. The author role follows the caller's admin flag.
func (i *InquiryController) Reply(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
		return
	}
	type request struct {
		Content string `json:"content" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	role := models.InquiryAuthorUser
	if ctx.GetBool(middleware.ContextIsAdminKey) {
		role = models.InquiryAuthorAdmin
	}
	msg, err := i.svc.Reply(uint(id), middleware.CurrentUserID(ctx), role, utils.Sanitize(req.Content))
	if err != nil {
		i.respondError(ctx, err)
		return
	}
	utils.Success(ctx, msg)
}

// ListAll returns every ticket for the admin dashboard.
func (i *InquiryController) ListAll(ctx *gin.Context) {
	items, err := i.svc.ListAll(strings.TrimSpace(ctx.Query("status")))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list inquiries")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Close marks a ticket closed.
func (i *InquiryController) Close(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid id")
		return
	}
	if err := i.svc.Close(uint(id)); err != nil {
		i.respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}

func (i *InquiryController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, inquiry.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40450, "inquiry not found")
	case errors.Is(err, inquiry.ErrClosed):
		utils.Error(ctx, http.StatusForbidden, 40350, "inquiry is closed")
	case errors.Is(err, inquiry.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40351, "not your inquiry")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50053, "inquiry operation failed")
	}
}
