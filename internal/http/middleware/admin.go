package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAdmin guards the moderation routes with the shared X-Admin-Token.
// With no token configured every request is refused.
func RequireAdmin(token string) gin.HandlerFunc {
	want := []byte(strings.TrimSpace(token))
	return func(c *gin.Context) {
		got := []byte(strings.TrimSpace(c.GetHeader(HeaderAdminToken)))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "admin token required")
			return
		}
		c.Next()
	}
}
