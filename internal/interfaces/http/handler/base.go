package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError reports a failed request bind
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError converts an error into a response. Domain errors, including
// those wrapped by the consolidation and ledger errors, keep their code;
// anything else is an internal error and is logged.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// SessionHandler resolves the console session of the calling operator
type SessionHandler struct {
	BaseHandler
	sessions *console.Registry
}

// session returns the caller's session, or writes the error and returns false
func (h *SessionHandler) session(c *gin.Context) (*console.Session, bool) {
	sess, err := h.sessions.Session(c.Request.Context(), middleware.GetTenantID(c), middleware.GetOperatorID(c))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return sess, true
}
