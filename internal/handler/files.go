package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FileHandler serves uploaded files with per-file access control: files
// belonging to public content are open, everything else requires the owner.
type FileHandler struct {
	db        *gorm.DB
	cfg       *config.Config
	jwtSecret string
}

func NewFileHandler(db *gorm.DB, cfg *config.Config) *FileHandler {
	return &FileHandler{db: db, cfg: cfg, jwtSecret: cfg.JWT.Secret}
}

// fileAccess resolves which project a stored file belongs to and whether
// it is publicly visible.
func (h *FileHandler) fileAccess(filename string) (projectID string, public bool, found bool) {
	var galleryImage models.GalleryImage
	if err := h.db.First(&galleryImage, "filename = ?", filename).Error; err == nil {
		var project models.Project
		if err := h.db.First(&project, "id = ?", galleryImage.ProjectID).Error; err != nil {
			return "", false, false
		}
		if project.IsPublic {
			if galleryImage.FolderID == nil {
				return project.ID, true, true
			}
			var folder models.GalleryFolder
			if err := h.db.First(&folder, "id = ?", *galleryImage.FolderID).Error; err == nil && folder.IsPublic {
				return project.ID, true, true
			}
		}
		return project.ID, false, true
	}

	var blogImage models.BlogImage
	if err := h.db.First(&blogImage, "filename = ?", filename).Error; err == nil {
		var entry models.BlogEntry
		if err := h.db.First(&entry, "id = ?", blogImage.BlogID).Error; err != nil {
			return "", false, false
		}
		var project models.Project
		if err := h.db.First(&project, "id = ?", entry.ProjectID).Error; err != nil {
			return "", false, false
		}
		return project.ID, project.IsPublic && entry.IsPublic, true
	}

	var project models.Project
	if err := h.db.First(&project, "image = ?", filename).Error; err == nil {
		return project.ID, project.IsPublic, true
	}

	return "", false, false
}

// Serve streams an uploaded file after the access check. Private files
// accept the bearer header or a ?token= query parameter, so plain <img>
// tags can load them.
func (h *FileHandler) Serve(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" || strings.Contains(filename, "..") {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid filename")
		return
	}

	projectID, public, found := h.fileAccess(filename)
	if !found {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "File not found")
		return
	}

	if !public {
		tokenStr := c.Query("token")
		if auth := c.GetHeader("Authorization"); tokenStr == "" && strings.HasPrefix(auth, "Bearer ") {
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		}
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
			return
		}
		claims, err := util.ParseToken(h.jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
			return
		}
		var project models.Project
		if err := h.db.First(&project, "id = ?", projectID).Error; err != nil ||
			project.UserID != claims.UserID {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "File not found")
			return
		}
	}

	path := filepath.Join(h.cfg.App.UploadsDir, filename)
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "File not found")
		return
	}
	c.File(path)
}
