package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillshare/internal/service"
)

// JWTAuthMiddleware valida JWT access tokens y deja el id del usuario en el
// contexto de la solicitud, donde lo lee service.ContextIdentity.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(service.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}
