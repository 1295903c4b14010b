package http

import (
	"time"

	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"skillshare/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	userH *UserHandler,
	profileH *ProfileHandler,
	jwtSvc *service.JWTService,
	authLimiter *limiter.Limiter,
) *gin.Engine {
	r := newEngine()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth", rateLimitMiddleware(authLimiter))
	auth.POST("/sign-up", userH.Register)
	auth.POST("/verify/:username", userH.Verify)
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	r.GET("/skills/featured", profileH.FeaturedSkills)

	private := r.Group("", JWTAuthMiddleware(jwtSvc))
	private.GET("/users/me", profileH.Me)
	private.PUT("/profile/bio", profileH.UpdateBio)
	private.PUT("/profile/status", profileH.SetStatus)
	private.GET("/skills/me", profileH.ListSkills)
	private.POST("/skills", profileH.AddSkill)

	return r
}

// newEngine enruta sobre el path escapado para que un %2F no parta segmentos.
// Los handlers leen el segmento crudo con rawPathParam.
func newEngine() *gin.Engine {
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = false
	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
