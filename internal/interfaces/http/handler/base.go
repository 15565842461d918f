package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salesiq/backend/internal/domain/mapping"
	"github.com/salesiq/backend/internal/domain/shared"
	"github.com/salesiq/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// editorErrorCodes maps the editor's sentinel errors to response codes. The
// matching status comes from dto.GetHTTPStatus.
var editorErrorCodes = []struct {
	err  error
	code string
}{
	{mapping.ErrEditorBusy, dto.ErrCodeConflict},
	{mapping.ErrEditorIdle, dto.ErrCodeInvalidState},
	{mapping.ErrEditorIndex, dto.ErrCodeNotFound},
	{mapping.ErrEditorConfidence, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntrySourceFieldEmpty, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntrySourceFieldUnknown, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntryTargetFieldEmpty, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntryTargetFieldUnknown, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntryInvalidTransform, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntryInvalidConfidence, dto.ErrCodeInvalidEntry},
	{mapping.ErrEntryInvalidProvenance, dto.ErrCodeInvalidEntry},
}

// HandleError converts service and domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		statusCode := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	for _, m := range editorErrorCodes {
		if errors.Is(err, m.err) {
			c.JSON(dto.GetHTTPStatus(m.code), dto.NewErrorResponseWithRequestID(m.code, err.Error(), requestID))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
