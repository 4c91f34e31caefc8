package file

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/access"
	"docdrop/file-api/pkg/middleware"
	"docdrop/file-api/pkg/security"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDownloadLink hands a consumer a short lived link for the file with the
// given id. The link is bound to both the file and the caller.
func FileDownloadLink(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	if err := access.Check(user.IsOps, access.OpRequestDownload); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Operation users are not allowed to download files",
			"requestID": requestID,
		})
		return
	}

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": requestID,
		})
		return
	}

	var file model.File

	err = d.DB.
		Where("id = ?", fileID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token, err := d.Tokens.DownloadToken(file.ID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue download token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	d.Metrics.TokensIssued.WithLabelValues(string(security.PurposeDownload)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"download_link": "/secure-download/" + token,
		"message":       "success",
	})
}
