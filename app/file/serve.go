package file

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/internal/storage"
	"docdrop/file-api/pkg/access"
	"docdrop/file-api/pkg/security"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const fallbackContentType = "application/octet-stream"

// FileServe redeems a download link. The link itself is the credential, but
// the user it was issued to must still exist and still be a consumer.
func FileServe(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	claims, err := d.Tokens.Verify(security.PurposeDownload, c.Param("token"))
	if err != nil {
		msg := "Invalid download link"
		reason := "invalid"

		if errors.Is(err, security.ErrExpired) {
			msg = "Download link has expired"
			reason = "expired"
		}

		d.Metrics.TokensRejected.WithLabelValues(string(security.PurposeDownload), reason).Inc()
		d.Metrics.Downloads.WithLabelValues("rejected").Inc()

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	var file model.File
	var user model.User

	err = d.DB.Where("id = ?", claims.FileID).First(&file).Error
	if err == nil {
		err = d.DB.Where("id = ?", claims.UserID).First(&user).Error
	}
	if err == nil {
		err = access.Check(user.IsOps, access.OpRedeemDownload)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, access.ErrForbidden) {
			d.Metrics.Downloads.WithLabelValues("rejected").Inc()

			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid download link or unauthorized user",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to resolve download link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	obj, err := d.Storage.Get(c.Request.Context(), file.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			d.Metrics.Downloads.WithLabelValues("missing").Inc()

			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})

			zap.L().Warn("File metadata exists but blob is missing",
				zap.Uint("fileID", file.ID),
				zap.String("filename", file.Filename),
				zap.String("requestID", requestID),
			)
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open stored file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = file.ContentType
	}
	if contentType == "" {
		contentType = fallbackContentType
	}

	d.Metrics.Downloads.WithLabelValues("ok").Inc()

	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Filename),
	})
}
