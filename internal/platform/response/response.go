// Package response writes the JSON envelope every handler returns.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// BadRequest writes 400 with a message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// Error maps err onto an HTTP status through its AppError code.
func Error(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	body := gin.H{"success": false, "error": appErr.Message, "code": appErr.Code}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.JSON(StatusFor(appErr.Code), body)
}

// Rejected writes a validation failure together with the submitted input and
// any extra redisplay data, so a form can be shown again unchanged.
func Rejected(c *gin.Context, err error, input interface{}, extra gin.H) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		Error(c, err)
		return
	}
	body := gin.H{
		"success": false,
		"error":   appErr.Message,
		"code":    appErr.Code,
		"fields":  appErr.Fields,
		"input":   input,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(StatusFor(appErr.Code), body)
}

// StatusFor returns the HTTP status for an error code.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeStorageWrite:
		return http.StatusInsufficientStorage
	case domain.CodePartial:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
