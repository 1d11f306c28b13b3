package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/response"
)

// RegistrationHandler handles breeder self-registration.
type RegistrationHandler struct {
	service *application.RegistrationService
}

func NewRegistrationHandler(service *application.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// RegisterRoutes registers the public account routes.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	account := r.Group("/api/v1/account")
	{
		account.POST("/register", h.Register)
		account.GET("/confirm", h.ConfirmEmail)
	}
}

// Register creates an account and its breeder profile. Passwords are never
// echoed back on rejection.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		extra := gin.H{}
		if result != nil {
			extra["state"] = result.State
			extra["orphaned"] = result.Orphaned
		}
		response.Rejected(c, err, req.Redacted(), extra)
		return
	}
	response.Created(c, result)
}

// ConfirmEmail handles the link sent in the confirmation email.
func (h *RegistrationHandler) ConfirmEmail(c *gin.Context) {
	accountID, err := uuid.Parse(c.Query("user_id"))
	if err != nil || c.Query("code") == "" {
		response.BadRequest(c, "user_id and code are required")
		return
	}
	if err := h.service.ConfirmEmail(c.Request.Context(), accountID, c.Query("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"confirmed": true})
}
