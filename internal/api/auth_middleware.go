package api

import (
	"context"
	"errors"
	"strings"

	"marketplace/internal/auth"
	"marketplace/internal/entity"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	currentUserContextKey = "current-user"
)

// AuthMiddleware resolves the bearer token to an active user and stores it in
// the request context. It aborts before the handler on any failure.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			Unauthorized(c, ErrCodeUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			Unauthorized(c, ErrCodeUnauthorized, "authorization header must be 'Bearer <token>'")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			Unauthorized(c, ErrCodeUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.authManager.Verify(tokenString)
		if err != nil {
			logrus.WithError(err).WithField("request_id", c.GetString(requestIDContextKey)).Warn("rejected bearer token")
			respondError(c, err)
			return
		}

		ctx, cancel := h.storeContext(c)
		defer cancel()

		user, err := h.credentials.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				// The account was deleted after the token was issued.
				Unauthorized(c, ErrCodeInvalidToken, "invalid token")
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				ServiceUnavailable(c, "user store unavailable")
				return
			}
			respondError(c, err)
			return
		}

		if !user.IsActive {
			respondError(c, service.ErrUserDisabled)
			return
		}

		c.Set(currentUserContextKey, user)
		c.Next()
	}
}

// RequireRoles lets the request through only when the current user's role is
// one of allowed.
func (h *HTTPHandler) RequireRoles(allowed ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			Unauthorized(c, ErrCodeUnauthorized, "authentication required")
			return
		}
		if err := auth.Authorize(user.Role, allowed...); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *entity.DbUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.DbUser)
	if !ok {
		return nil
	}
	return user
}
