package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the gin context key the middleware stores the actor id under.
const UserIDKey = "userID"

// AuthMiddleWare requires a valid bearer token and stores its subject as the
// actor id. Token issuance lives in the auth service; this middleware only
// verifies and extracts identity.
func AuthMiddleWare(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := actorFromHeader(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleWare extracts the actor id when a valid token is present
// and silently continues otherwise. View registration dedups authenticated
// viewers by actor id and anonymous viewers by network origin.
func OptionalAuthMiddleWare(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := actorFromHeader(c, secret); err == nil {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

func actorFromHeader(c *gin.Context, secret string) (string, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}
