package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userKey is the gin context key holding the authenticated username.
const userKey = "username"

// requireAuth resolves the bearer token into a username or aborts with 401.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	username, ok := s.deps.Auth.Authenticate(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set(userKey, username)
	c.Next()
}

func currentUsername(c *gin.Context) string {
	return c.GetString(userKey)
}
