// Package file contains the endpoints that store, list and hand out documents
package file

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/access"
	"docdrop/file-api/pkg/middleware"
	"docdrop/file-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	if err := access.Check(user.IsOps, access.OpUpload); err != nil {
		d.Metrics.Uploads.WithLabelValues("forbidden").Inc()

		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Only operations users can upload files",
			"requestID": requestID,
		})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		d.Metrics.Uploads.WithLabelValues("rejected").Inc()

		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "File is too large",
				"requestID": requestID,
			})
			return
		}

		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "No file part in the request",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Expected a multipart form with a file field",
			"requestID": requestID,
		})

		zap.L().Debug("Failed to read multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	name, err := validators.FileNameValidator(fh.Filename, d.Config.Upload.AllowedExtensions)
	if err != nil {
		d.Metrics.Uploads.WithLabelValues("rejected").Inc()

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer f.Close()

	contentType, err := validators.DetectContentType(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to detect content type", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Same name means same blob, the last upload wins
	err = d.Storage.Put(c.Request.Context(), name, f, fh.Size, contentType)
	if err != nil {
		d.Metrics.Uploads.WithLabelValues("failed").Inc()

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	rec := model.File{
		Filename:    name,
		UploadedBy:  user.ID,
		ContentType: contentType,
		Size:        fh.Size,
	}

	if err := d.DB.Create(&rec).Error; err != nil {
		d.Metrics.Uploads.WithLabelValues("failed").Inc()

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save file metadata", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	d.Metrics.Uploads.WithLabelValues("ok").Inc()

	zap.L().Info("File uploaded",
		zap.Uint("fileID", rec.ID),
		zap.String("filename", name),
		zap.Int64("size", fh.Size),
		zap.String("requestID", requestID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message": "File successfully uploaded",
		"id":      rec.ID,
	})
}
