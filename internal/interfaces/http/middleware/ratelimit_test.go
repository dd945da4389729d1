package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozen returns a limiter whose clock only moves when advance is called
func frozen(perSecond float64, burst int) (*RateLimiter, func(time.Duration)) {
	rl := NewRateLimiter(perSecond, burst, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	rl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	return rl, func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows burst then blocks", func(t *testing.T) {
		rl, _ := frozen(1, 3)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("a"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("a"))
		assert.Equal(t, 0, rl.Remaining("a"))
	})

	t.Run("separate buckets per key", func(t *testing.T) {
		rl, _ := frozen(1, 1)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
		assert.Equal(t, 1, rl.Remaining("unseen"))
	})

	t.Run("refills over time", func(t *testing.T) {
		rl, advance := frozen(2, 1)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		advance(500 * time.Millisecond)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("sweep drops idle buckets", func(t *testing.T) {
		rl, advance := frozen(1, 1)

		rl.Allow("idle")
		advance(30 * time.Second)
		rl.Allow("busy")
		advance(45 * time.Second)

		assert.Equal(t, 1, rl.Sweep())
		assert.Len(t, rl.clients, 1)
		assert.Contains(t, rl.clients, "busy")
	})

	t.Run("concurrent use", func(t *testing.T) {
		rl, _ := frozen(1, 50)

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if rl.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, allowed)
	})
}

func TestRateLimit_PerOperator(t *testing.T) {
	rl, _ := frozen(1, 1)
	tenant := uuid.New()

	router := gin.New()
	router.Use(RequestID())
	console := router.Group("/api/v1/console", Identity(DefaultIdentityConfig()), RateLimit(rl))
	console.GET("/consolidation", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(operator string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/console/consolidation", nil)
		req.Header.Set(TenantHeaderKey, tenant.String())
		req.Header.Set(OperatorHeaderKey, operator)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := call("op-1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	limited := call("op-1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)

	assert.Equal(t, http.StatusOK, call("op-2").Code)
}
