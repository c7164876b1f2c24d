package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GalleryHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewGalleryHandler(db *gorm.DB, cfg *config.Config) *GalleryHandler {
	return &GalleryHandler{db: db, cfg: cfg}
}

// ListFolders returns every folder of the project; the client builds the
// tree from parent_id.
func (h *GalleryHandler) ListFolders(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var folders []models.GalleryFolder
	if err := h.db.Where("project_id = ?", project.ID).
		Order("name ASC").Find(&folders).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list folders")
		return
	}
	util.Success(c, util.Response{"folders": folders})
}

func (h *GalleryHandler) CreateFolder(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Name     string  `json:"name" binding:"required"`
		ParentID *string `json:"parent_id"`
		IsPublic bool    `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Folder name is required")
		return
	}

	if req.ParentID != nil {
		var parent models.GalleryFolder
		if err := h.db.First(&parent, "id = ? AND project_id = ?",
			*req.ParentID, project.ID).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parent folder not found")
			return
		}
	}

	now := util.NowISO()
	folder := models.GalleryFolder{
		ID:        newID(),
		ProjectID: project.ID,
		Name:      req.Name,
		ParentID:  req.ParentID,
		IsPublic:  req.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.db.Create(&folder).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create folder")
		return
	}
	util.Success(c, util.Response{"folder": folder})
}

func (h *GalleryHandler) UpdateFolder(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var folder models.GalleryFolder
	if err := h.db.First(&folder, "id = ? AND project_id = ?",
		c.Param("folderID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Folder")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		IsPublic *bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.IsPublic != nil {
		folder.IsPublic = *req.IsPublic
	}
	folder.UpdatedAt = util.NowISO()

	if err := h.db.Save(&folder).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update folder")
		return
	}
	util.Success(c, util.Response{"folder": folder})
}

// DeleteFolder removes a folder, its subtree and every image inside. The
// subtree is walked with a worklist instead of recursion.
func (h *GalleryHandler) DeleteFolder(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var folder models.GalleryFolder
	if err := h.db.First(&folder, "id = ? AND project_id = ?",
		c.Param("folderID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Folder")
		return
	}

	ids := []string{folder.ID}
	frontier := []string{folder.ID}
	for len(frontier) > 0 {
		var children []models.GalleryFolder
		if err := h.db.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete folder")
			return
		}
		frontier = frontier[:0]
		for _, child := range children {
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}

	var images []models.GalleryImage
	if err := h.db.Where("folder_id IN ?", ids).Find(&images).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete folder")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id IN ?", ids).Delete(&models.GalleryImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.GalleryFolder{}).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete folder")
		return
	}

	for _, img := range images {
		removeUpload(h.cfg, img.Filename)
	}
	util.Success(c, util.Response{"message": "Folder deleted", "deleted_folders": len(ids)})
}

// FolderPath returns the breadcrumb from the root folder down to the given
// folder. The walk is bounded to guard against parent cycles.
func (h *GalleryHandler) FolderPath(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var path []models.GalleryFolder
	id := c.Param("folderID")
	for depth := 0; depth < 100; depth++ {
		var folder models.GalleryFolder
		if err := h.db.First(&folder, "id = ? AND project_id = ?", id, project.ID).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Folder not found")
			return
		}
		path = append([]models.GalleryFolder{folder}, path...)
		if folder.ParentID == nil {
			break
		}
		id = *folder.ParentID
	}
	util.Success(c, util.Response{"path": path})
}

// ListImages returns the project's images, optionally filtered by folder.
// folder_id=root selects images outside any folder.
func (h *GalleryHandler) ListImages(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	q := h.db.Where("project_id = ?", project.ID)
	switch folderID := c.Query("folder_id"); folderID {
	case "":
	case "root":
		q = q.Where("folder_id IS NULL")
	default:
		q = q.Where("folder_id = ?", folderID)
	}

	var images []models.GalleryImage
	if err := q.Order("created_at DESC").Find(&images).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list images")
		return
	}
	util.Success(c, util.Response{"images": images})
}

// UploadImage stores a multipart image into the project gallery.
func (h *GalleryHandler) UploadImage(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var folderID *string
	if v := c.PostForm("folder_id"); v != "" {
		var folder models.GalleryFolder
		if err := h.db.First(&folder, "id = ? AND project_id = ?", v, project.ID).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Folder not found")
			return
		}
		folderID = &v
	}

	filename, ok := saveImageUpload(c, h.cfg, "file")
	if !ok {
		return
	}

	image := models.GalleryImage{
		ID:        newID(),
		ProjectID: project.ID,
		FolderID:  folderID,
		Filename:  filename,
		URL:       "/api/files/" + filename,
		CreatedAt: util.NowISO(),
	}
	if err := h.db.Create(&image).Error; err != nil {
		removeUpload(h.cfg, filename)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to save image")
		return
	}
	util.Success(c, util.Response{"image": image})
}

// MoveImage reassigns an image to another folder (or to the root).
func (h *GalleryHandler) MoveImage(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var image models.GalleryImage
	if err := h.db.First(&image, "id = ? AND project_id = ?",
		c.Param("imageID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Image")
		return
	}

	var req struct {
		FolderID *string `json:"folder_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.FolderID != nil {
		var folder models.GalleryFolder
		if err := h.db.First(&folder, "id = ? AND project_id = ?",
			*req.FolderID, project.ID).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Folder not found")
			return
		}
	}
	image.FolderID = req.FolderID

	if err := h.db.Save(&image).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to move image")
		return
	}
	util.Success(c, util.Response{"image": image})
}

func (h *GalleryHandler) DeleteImage(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var image models.GalleryImage
	if err := h.db.First(&image, "id = ? AND project_id = ?",
		c.Param("imageID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Image")
		return
	}

	if err := h.db.Delete(&image).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete image")
		return
	}
	removeUpload(h.cfg, image.Filename)
	util.Success(c, util.Response{"message": "Image deleted"})
}
