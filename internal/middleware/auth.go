package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims read from identity provider tokens. The subject is
// the provider's user identifier.
type IdentityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserResolver maps a verified token subject to a local user.
type UserResolver interface {
	FindOrCreateUserByExternalSubject(ctx context.Context, subject, email string) (*domain.User, error)
}

// AuthConfig holds what the middleware needs to verify tokens.
type AuthConfig struct {
	Secret string
	// Issuer is checked against the iss claim when set.
	Issuer string
}

// AuthMiddleware creates a Gin middleware handler that validates bearer tokens issued
// by the identity provider and stores the internal user ID in the request context.
func AuthMiddleware(cfg AuthConfig, users UserResolver) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims := &IdentityClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.Secret), nil
		}, parserOpts...)
		if err != nil || !token.Valid {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		if claims.Subject == "" {
			logger.Error("Subject missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		user, err := users.FindOrCreateUserByExternalSubject(c.Request.Context(), claims.Subject, claims.Email)
		if err != nil {
			logger.Error("Failed to resolve token subject to a user", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}

		ctx := WithUserID(c.Request.Context(), user.UserID)
		ctx = context.WithValue(ctx, authSubjectKey, claims.Subject)
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", user.UserID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
