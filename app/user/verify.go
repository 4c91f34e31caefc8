package user

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/security"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserVerify marks the account behind a verification link as verified.
// Using the same link again while it's still valid is harmless.
func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	claims, err := d.Tokens.Verify(security.PurposeEmailVerify, c.Param("token"))
	if err != nil {
		if errors.Is(err, security.ErrExpired) {
			d.Metrics.TokensRejected.WithLabelValues(string(security.PurposeEmailVerify), "expired").Inc()

			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "The verification link has expired",
				"requestID": requestID,
			})
			return
		}

		d.Metrics.TokensRejected.WithLabelValues(string(security.PurposeEmailVerify), "invalid").Inc()

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "The verification link is invalid",
			"requestID": requestID,
		})
		return
	}

	r := d.DB.
		Model(&model.User{}).
		Where("email = ?", claims.Email).
		Update("is_verified", true)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify user", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
	})
}
