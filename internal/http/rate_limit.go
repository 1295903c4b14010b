package http

import (
	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"
)

// NewIPLimiter crea el limitador por IP usado en las rutas de /auth.
// Los headers de forwarding solo se leen con trustProxy; si no, cualquier
// cliente elegiría su propia clave.
func NewIPLimiter(perSecond float64, trustProxy bool) *limiter.Limiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	lmt := tollbooth.NewLimiter(perSecond, nil)
	lookups := []string{"RemoteAddr"}
	if trustProxy {
		lookups = []string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"}
	}
	lmt.SetIPLookups(lookups)
	lmt.SetMessageContentType("application/json; charset=utf-8")
	lmt.SetMessage(`{"error":"too many requests"}`)
	return lmt
}

// rateLimitMiddleware adapta tollbooth a gin.
func rateLimitMiddleware(lmt *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lmt == nil {
			c.Next()
			return
		}
		if httpErr := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpErr != nil {
			c.Data(httpErr.StatusCode, lmt.GetMessageContentType(), []byte(httpErr.Message))
			c.Abort()
			return
		}
		c.Next()
	}
}
