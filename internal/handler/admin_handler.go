package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/response"
)

// AdminHandler handles maintenance requests.
type AdminHandler struct {
	animals *application.AnimalService
	lookup  *application.LookupService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(animals *application.AnimalService, lookup *application.LookupService) *AdminHandler {
	return &AdminHandler{animals: animals, lookup: lookup}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/photos/sweep", h.SweepPhotos)
		admin.POST("/lookups/invalidate", h.InvalidateLookups)
	}
}

// SweepPhotos handles POST /api/v1/admin/photos/sweep.
func (h *AdminHandler) SweepPhotos(c *gin.Context) {
	report, err := h.animals.SweepPhotos(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}

// InvalidateLookups handles POST /api/v1/admin/lookups/invalidate.
func (h *AdminHandler) InvalidateLookups(c *gin.Context) {
	h.lookup.Invalidate()
	response.Success(c, gin.H{"invalidated": true})
}
