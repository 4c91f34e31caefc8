package user

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/security"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var (
	decoyOnce sync.Once
	decoyHash string
)

// compareDecoy burns the same amount of work as a real password check so an
// unknown email takes as long to reject as a wrong password
func compareDecoy(h *security.PasswordHasher, p string) {
	decoyOnce.Do(func() {
		decoyHash, _ = h.Hash("decoy-password")
	})

	if decoyHash != "" {
		h.Compare(p, decoyHash)
	}
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var user model.User

	err := d.DB.
		Where("email = ?", data.Email).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			compareDecoy(d.Hasher, data.Password)

			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid credentials",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := d.Hasher.Compare(data.Password, user.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to compare password hash", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	// Operators skip email verification
	if !user.IsVerified && !user.IsOps {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Please verify your email before logging in",
			"requestID": requestID,
		})
		return
	}

	token, err := d.Tokens.SessionToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	d.Metrics.TokensIssued.WithLabelValues(string(security.PurposeSession)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
