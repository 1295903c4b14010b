package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedCount(r http.Handler, n int, forwardedFor func(i int) string) int {
	limited := 0
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if forwardedFor != nil {
			req.Header.Set("X-Forwarded-For", forwardedFor(i))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

func newLimitedEngine(trustProxy bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := newEngine()
	r.GET("/ping", rateLimitMiddleware(NewIPLimiter(1, trustProxy)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitMiddleware_BlocksBurst(t *testing.T) {
	r := newLimitedEngine(false)

	assert.Positive(t, limitedCount(r, 5, nil))
}

func TestRateLimitMiddleware_IgnoresForwardedForByDefault(t *testing.T) {
	r := newLimitedEngine(false)

	limited := limitedCount(r, 20, func(i int) string { return fmt.Sprintf("203.0.113.%d", i) })

	assert.GreaterOrEqual(t, limited, 15)
}

func TestRateLimitMiddleware_TrustsForwardedForBehindProxy(t *testing.T) {
	r := newLimitedEngine(true)

	limited := limitedCount(r, 20, func(i int) string { return fmt.Sprintf("203.0.113.%d", i) })

	assert.Zero(t, limited)
}
