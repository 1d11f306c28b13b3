package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/response"
)

// AnimalHandler handles HTTP requests for animals and their photos.
type AnimalHandler struct {
	service *application.AnimalService
	lookup  *application.LookupService
}

// NewAnimalHandler creates a new AnimalHandler.
func NewAnimalHandler(service *application.AnimalService, lookup *application.LookupService) *AnimalHandler {
	return &AnimalHandler{service: service, lookup: lookup}
}

// RegisterRoutes registers the animal routes. Reads are public.
func (h *AnimalHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	writerRole := middleware.RequireRole(auth.RoleBreeder, auth.RoleAdmin)

	animals := r.Group("/api/v1/animals")
	{
		animals.GET("", h.ListAnimals)
		animals.GET("/form", h.FormOptions)
		animals.GET("/:id", h.GetAnimal)
	}

	writes := r.Group("/api/v1/animals")
	writes.Use(authMW, writerRole)
	{
		writes.POST("", h.CreateAnimal)
		writes.PUT("/:id", h.UpdateAnimal)
		writes.DELETE("/:id", h.DeleteAnimal)
	}
}

// CreateAnimal accepts a multipart form with an optional "photo" file, or a
// JSON body without one.
func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	var req application.AnimalRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var upload *application.PhotoUpload
	if fh, err := c.FormFile("photo"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, "failed to read uploaded photo")
			return
		}
		defer f.Close()
		upload = &application.PhotoUpload{FileName: fh.Filename, Content: f}
	}

	result, err := h.service.Create(c.Request.Context(), req, upload)
	if err != nil {
		h.reject(c, err, req)
		return
	}
	response.Created(c, result)
}

// UpdateAnimal replaces the scalar fields and references of an animal.
func (h *AnimalHandler) UpdateAnimal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req application.AnimalRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.reject(c, err, req)
		return
	}
	response.Success(c, result)
}

// DeleteAnimal removes an animal and its photos.
func (h *AnimalHandler) DeleteAnimal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetAnimal returns one animal. ?include= narrows the loaded relations.
func (h *AnimalHandler) GetAnimal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	include := parseInclude(c.Query("include"), animal.Include{Breed: true, Breeder: true, Photos: true})
	dto, err := h.service.Get(c.Request.Context(), id, include)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// ListAnimals returns every animal with its breed and breeder by default.
func (h *AnimalHandler) ListAnimals(c *gin.Context) {
	include := parseInclude(c.Query("include"), animal.Include{Breed: true, Breeder: true})
	dtos, err := h.service.List(c.Request.Context(), include)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dtos)
}

// FormOptions returns the choices for the breed and breeder inputs.
func (h *AnimalHandler) FormOptions(c *gin.Context) {
	breeds, breeders, err := h.lookup.Options(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"breeds": breeds, "breeders": breeders})
}

// reject redisplays a refused write with the submitted input and fresh
// selection options. Errors other than validation are reported plainly.
func (h *AnimalHandler) reject(c *gin.Context, err error, req application.AnimalRequest) {
	if !domain.IsValidation(err) {
		response.Error(c, err)
		return
	}
	extra := gin.H{}
	if breeds, breeders, lookupErr := h.lookup.Options(c.Request.Context()); lookupErr == nil {
		extra["breeds"] = breeds
		extra["breeders"] = breeders
	}
	extra["missing_breed"] = errors.Is(err, animal.ErrMissingBreed)
	extra["missing_breeder"] = errors.Is(err, animal.ErrMissingBreeder)
	response.Rejected(c, err, req, extra)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// parseInclude reads a comma separated relation list. An empty value keeps def.
func parseInclude(raw string, def animal.Include) animal.Include {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	var inc animal.Include
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "breed":
			inc.Breed = true
		case "breeder":
			inc.Breeder = true
		case "photos":
			inc.Photos = true
		}
	}
	return inc
}
