package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NoError(t, v.Var("Courier", ShippingMethodTag))
	assert.Error(t, v.Var("drone", ShippingMethodTag))
}

type confirmInput struct {
	ShippingMethod string `json:"shipping_method" binding:"required,shipping_method"`
	Quantity       int    `json:"quantity" binding:"omitempty,gt=0"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req confirmInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	post := func(body string) (*httptest.ResponseRecorder, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	t.Run("reports field details with json names", func(t *testing.T) {
		w, resp := post(`{"shipping_method": "drone", "quantity": -1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)

		byField := map[string]dto.ValidationDetail{}
		for _, d := range resp.Error.Details {
			byField[d.Field] = d
		}
		assert.Equal(t, ShippingMethodTag, byField["shipping_method"].Tag)
		assert.Equal(t, "Must be one of: courier postal pickup", byField["shipping_method"].Message)
		assert.Equal(t, "Must be greater than 0", byField["quantity"].Message)
	})

	t.Run("malformed json is not a validation failure", func(t *testing.T) {
		w, resp := post(`{"shipping_method":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("accepts known method", func(t *testing.T) {
		w, resp := post(`{"shipping_method": "pickup"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})
}
