package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/response"
)

// CatalogHandler handles breed and breeder administration.
type CatalogHandler struct {
	service *application.CatalogService
	lookup  *application.LookupService
}

func NewCatalogHandler(service *application.CatalogService, lookup *application.LookupService) *CatalogHandler {
	return &CatalogHandler{service: service, lookup: lookup}
}

// RegisterRoutes registers breed and breeder routes. Writes need the admin role.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	r.GET("/api/v1/breeds", h.ListBreeds)
	r.GET("/api/v1/breeders", h.ListBreeders)
	r.GET("/api/v1/breeders/:id", h.GetBreeder)

	admin := r.Group("/api/v1")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/breeds", h.CreateBreed)
		admin.DELETE("/breeds/:id", h.DeleteBreed)
		admin.POST("/breeders", h.CreateBreeder)
		admin.PUT("/breeders/:id", h.UpdateBreeder)
	}
}

func (h *CatalogHandler) ListBreeds(c *gin.Context) {
	options, err := h.lookup.ListBreeds(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, options)
}

func (h *CatalogHandler) ListBreeders(c *gin.Context) {
	options, err := h.lookup.ListBreeders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, options)
}

func (h *CatalogHandler) GetBreeder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dto, err := h.service.GetBreeder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

func (h *CatalogHandler) CreateBreed(c *gin.Context) {
	var req application.CreateBreedRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto, err := h.service.CreateBreed(c.Request.Context(), req)
	if err != nil {
		response.Rejected(c, err, req, nil)
		return
	}
	response.Created(c, dto)
}

// DeleteBreed refuses with 409 while any animal references the breed.
func (h *CatalogHandler) DeleteBreed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBreed(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *CatalogHandler) CreateBreeder(c *gin.Context) {
	var req application.CreateBreederRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto, err := h.service.CreateBreeder(c.Request.Context(), req)
	if err != nil {
		response.Rejected(c, err, req, nil)
		return
	}
	response.Created(c, dto)
}

func (h *CatalogHandler) UpdateBreeder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req application.UpdateBreederRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto, err := h.service.UpdateBreeder(c.Request.Context(), id, req)
	if err != nil {
		response.Rejected(c, err, req, nil)
		return
	}
	response.Success(c, dto)
}
