package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/finance-tracker-ledger/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserIDKey is the gin context key holding the authenticated user's uuid.UUID
const UserIDKey = "user_id"

const bearerPrefix = "Bearer "

// Auth accepts HS256 bearer tokens whose subject is the caller's user id.
// The issuer is checked only when one is configured.
func Auth(logger *slog.Logger, cfg *config.AuthConfig) gin.HandlerFunc {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.JWTIssuer != "" {
		options = append(options, jwt.WithIssuer(cfg.JWTIssuer))
	}
	parser := jwt.NewParser(options...)
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), bearerPrefix)
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Token subject is not a user id", "subject", claims.Subject)
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token subject")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated caller set by Auth
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
