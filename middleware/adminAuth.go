package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clinicbook/models"
	"clinicbook/services/admin"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionValidator resolves an admin session token.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.AdminSession, error)
}

// AdminTokenFromRequest reads the session token from the admin cookie or a
// Bearer header.
func AdminTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.AdminSessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AdminSessionMiddleware rejects requests without a live admin session.
func AdminSessionMiddleware(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AdminTokenFromRequest(c)
		if token == "" {
			abortUnauthorized(c, "Admin session required")
			return
		}

		sess, err := sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, admin.ErrSessionNotFound) {
				utils.GetLogger().Error("Admin session lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.Response{Success: false, Message: "Internal server error"})
				return
			}
			abortUnauthorized(c, "Admin session expired or invalid")
			return
		}

		c.Set("adminID", sess.AdminID)
		c.Set("adminEmail", sess.Email)
		c.Set("adminToken", token)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Response{Success: false, Message: message})
}
