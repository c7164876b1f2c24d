package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
)

// allowedImageTypes maps accepted image MIME types to the stored extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// saveImageUpload validates and stores a multipart image upload, returning
// the generated filename. Size is capped by config and the content type is
// sniffed from the first bytes, not trusted from the client header.
func saveImageUpload(c *gin.Context, cfg *config.Config, field string) (string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No file uploaded")
		return "", false
	}

	if fileHeader.Size > cfg.MaxUploadBytes() {
		util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam,
			"File is too large")
		return "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to read upload")
		return "", false
	}
	head := make([]byte, 512)
	n, _ := f.Read(head)
	f.Close()

	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			"Only JPEG, PNG, GIF and WEBP images are allowed")
		return "", false
	}

	if err := os.MkdirAll(cfg.App.UploadsDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store upload")
		return "", false
	}

	filename := newID() + ext
	dst := filepath.Join(cfg.App.UploadsDir, filename)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store upload")
		return "", false
	}
	return filename, true
}

// removeUpload deletes a stored file, ignoring files already gone.
func removeUpload(cfg *config.Config, filename string) {
	if filename == "" {
		return
	}
	path := filepath.Join(cfg.App.UploadsDir, filepath.Base(filename))
	_ = os.Remove(path)
}
