package middleware

import (
	"net/http"

	"github.com/electroitzone/report-dashboard/backend-go/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const usernameKey = "username"

// Authenticator resolves a bearer token to a username.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		user, err := a.Authenticate(token)
		if err != nil {
			log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(usernameKey, user)
		c.Next()
	}
}

// GetUsername returns the user set by RequireAuth.
func GetUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}
