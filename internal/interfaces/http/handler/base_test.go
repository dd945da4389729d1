package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "domain error",
			err:     shared.ErrRunInProgress,
			status:  http.StatusConflict,
			code:    dto.ErrCodeRunInProgress,
			message: "A consolidation run is already in progress",
		},
		{
			name:    "wrapped ledger error",
			err:     fmt.Errorf("ledger: fetch order items: %w", shared.NewDomainError("TRANSPORT_ERROR", "connection refused")),
			status:  http.StatusBadGateway,
			code:    dto.ErrCodeLedgerUnavailable,
			message: "connection refused",
		},
		{
			name:    "validation error unwraps",
			err:     consolidation.NewValidationError(shared.ErrNoEligibleItems),
			status:  http.StatusUnprocessableEntity,
			code:    dto.ErrCodeNoEligibleItems,
			message: shared.ErrNoEligibleItems.Message,
		},
		{
			name:    "unknown error",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_Success(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := &BaseHandler{}
	h.Success(c, map[string]int{"count": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"count": float64(2)}, resp.Data)
}

func TestBaseHandler_BadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := &BaseHandler{}
	h.BadRequest(c, "nope")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}
