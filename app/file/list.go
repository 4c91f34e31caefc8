package file

import (
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/model"
	"docdrop/file-api/pkg/access"
	"docdrop/file-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type listEntry struct {
	ID       uint   `json:"id"`
	Filename string `json:"filename"`
}

// FileList returns every stored file in upload order
func FileList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	if err := access.Check(user.IsOps, access.OpList); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Not allowed to list files",
			"requestID": requestID,
		})
		return
	}

	files := make([]listEntry, 0)

	err := d.DB.
		Model(model.File{}).
		Select("id", "filename").
		Order("id ASC").
		Find(&files).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
	})
}
