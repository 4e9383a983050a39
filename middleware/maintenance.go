package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhub/atelier/models"
	"github.com/atelierhub/atelier/services/settings"
	"github.com/atelierhub/atelier/utils"
)

// MaintenanceGate rejects user-facing writes while the maintenance_mode
// setting is on. Reads and admin routes stay available.
func MaintenanceGate(svc *settings.Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		switch ctx.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			ctx.Next()
			return
		}
		if ctx.GetBool(ContextIsAdminKey) {
			ctx.Next()
			return
		}
		if on, err := svc.Bool(models.SettingMaintenanceMode); err == nil && on {
			utils.Error(ctx, http.StatusServiceUnavailable, 50360, "site is under maintenance")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
