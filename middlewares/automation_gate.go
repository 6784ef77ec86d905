package middlewares

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/utils"
)

// AutomationGate protects automation-facing endpoints with a single shared
// secret. When no secret is configured the gate is open; this is the
// expected state in non-configured environments.
func AutomationGate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("missing bearer token"))
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid bearer token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
