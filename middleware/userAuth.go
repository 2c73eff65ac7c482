package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserLookup confirms the token subject still exists.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// JWTAuthUserMiddleware authenticates patients by a Bearer JWT whose subject
// is the user id. A nil users skips the existence check.
func JWTAuthUserMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Insufficient authorization")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		if users != nil {
			u, err := users.GetByID(c.Request.Context(), oid)
			if err != nil {
				utils.GetLogger().Error("User lookup failed", zap.String("userId", userID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.Response{Success: false, Message: "Internal server error"})
				return
			}
			if u == nil {
				abortUnauthorized(c, "Authentication error")
				return
			}
		}

		c.Set("userID", userID)
		c.Next()
	}
}
