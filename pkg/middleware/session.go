package middleware

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewSessionMiddleware authenticates the request with the session token from
// the Authorization header ("Bearer <token>" or the bare token) and loads the
// user it belongs to. Handlers after it can call CurrentUser.
func NewSessionMiddleware(d *internal.Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Token is missing",
				"requestID": requestID,
			})
			return
		}

		claims, err := d.Tokens.Verify(security.PurposeSession, tokenStr)
		if err != nil {
			msg := "Token is invalid"
			reason := "invalid"

			if errors.Is(err, security.ErrExpired) {
				msg = "Token has expired. Please log in again"
				reason = "expired"
			}

			d.Metrics.TokensRejected.WithLabelValues(string(security.PurposeSession), reason).Inc()

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     msg,
				"requestID": requestID,
			})
			return
		}

		var user model.User

		err = d.DB.
			Where("id = ?", claims.UserID).
			First(&user).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Token is invalid",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to load session user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", &user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by the session middleware
func CurrentUser(c *gin.Context) *model.User {
	return c.MustGet("user").(*model.User)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)

	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return header
}
