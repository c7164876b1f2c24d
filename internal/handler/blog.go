package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BlogHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewBlogHandler(db *gorm.DB, cfg *config.Config) *BlogHandler {
	return &BlogHandler{db: db, cfg: cfg}
}

// List returns the project's blog entries, newest first. The owner's view
// never bumps the view counter.
func (h *BlogHandler) List(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entries []models.BlogEntry
	if err := h.db.Where("project_id = ?", project.ID).
		Order("created_at DESC").Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list blog entries")
		return
	}
	util.Success(c, util.Response{"entries": entries})
}

func (h *BlogHandler) Create(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Title is required")
		return
	}

	now := util.NowISO()
	entry := models.BlogEntry{
		ID:          newID(),
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create blog entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *BlogHandler) Get(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.BlogEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Blog entry")
		return
	}

	var images []models.BlogImage
	h.db.Where("blog_id = ?", entry.ID).Order("created_at ASC").Find(&images)
	util.Success(c, util.Response{"entry": entry, "images": images})
}

func (h *BlogHandler) Update(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.BlogEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Blog entry")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.IsPublic != nil {
		entry.IsPublic = *req.IsPublic
	}
	entry.UpdatedAt = util.NowISO()

	if err := h.db.Save(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update blog entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *BlogHandler) Delete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.BlogEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Blog entry")
		return
	}

	var images []models.BlogImage
	h.db.Where("blog_id = ?", entry.ID).Find(&images)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", entry.ID).Delete(&models.BlogImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entry).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete blog entry")
		return
	}

	for _, img := range images {
		removeUpload(h.cfg, img.Filename)
	}
	util.Success(c, util.Response{"message": "Blog entry deleted"})
}

// UploadImage attaches an image to a blog entry.
func (h *BlogHandler) UploadImage(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.BlogEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Blog entry")
		return
	}

	filename, ok := saveImageUpload(c, h.cfg, "file")
	if !ok {
		return
	}

	image := models.BlogImage{
		ID:        newID(),
		BlogID:    entry.ID,
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

func (h *BlogHandler) DeleteImage(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var image models.BlogImage
	err := h.db.Joins("JOIN blog_entries ON blog_entries.id = blog_images.blog_id").
		Where("blog_images.id = ? AND blog_entries.project_id = ?",
			c.Param("imageID"), project.ID).
		First(&image).Error
	if err != nil {
		notFoundOrServerErr(c, err, "Blog image")
		return
	}

	if err := h.db.Delete(&image).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete image")
		return
	}
	removeUpload(h.cfg, image.Filename)
	util.Success(c, util.Response{"message": "Image deleted"})
}
