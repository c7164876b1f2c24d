package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LibraryHandler struct {
	db *gorm.DB
}

func NewLibraryHandler(db *gorm.DB) *LibraryHandler {
	return &LibraryHandler{db: db}
}

func (h *LibraryHandler) ListFolders(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var folders []models.LibraryFolder
	if err := h.db.Where("project_id = ?", project.ID).
		Order("name ASC").Find(&folders).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list folders")
		return
	}
	util.Success(c, util.Response{"folders": folders})
}

func (h *LibraryHandler) CreateFolder(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Name     string  `json:"name" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Folder name is required")
		return
	}

	if req.ParentID != nil {
		var parent models.LibraryFolder
		if err := h.db.First(&parent, "id = ? AND project_id = ?",
			*req.ParentID, project.ID).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parent folder not found")
			return
		}
	}

	now := util.NowISO()
	folder := models.LibraryFolder{
		ID:        newID(),
		ProjectID: project.ID,
		Name:      req.Name,
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.db.Create(&folder).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create folder")
		return
	}
	util.Success(c, util.Response{"folder": folder})
}

func (h *LibraryHandler) UpdateFolder(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var folder models.LibraryFolder
	if err := h.db.First(&folder, "id = ? AND project_id = ?",
		c.Param("folderID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Folder")
		return
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		folder.Name = *req.Name
	}
	folder.UpdatedAt = util.NowISO()

	if err := h.db.Save(&folder).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update folder")
		return
	}
	util.Success(c, util.Response{"folder": folder})
}

// DeleteFolder removes a folder subtree and the entries inside it, walking
// children with a worklist.
func (h *LibraryHandler) DeleteFolder(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var folder models.LibraryFolder
	if err := h.db.First(&folder, "id = ? AND project_id = ?",
		c.Param("folderID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Folder")
		return
	}

	ids := []string{folder.ID}
	frontier := []string{folder.ID}
	for len(frontier) > 0 {
		var children []models.LibraryFolder
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

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id IN ?", ids).Delete(&models.LibraryEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.LibraryFolder{}).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete folder")
		return
	}
	util.Success(c, util.Response{"message": "Folder deleted", "deleted_folders": len(ids)})
}

// FolderPath returns the breadcrumb from the root folder down to the given
// folder. The walk is bounded to guard against parent cycles.
func (h *LibraryHandler) FolderPath(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var path []models.LibraryFolder
	id := c.Param("folderID")
	for depth := 0; depth < 100; depth++ {
		var folder models.LibraryFolder
		if err := h.db.First(&folder, "id = ? AND project_id = ?", id, project.ID).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Folder not found")
			return
		}
		path = append([]models.LibraryFolder{folder}, path...)
		if folder.ParentID == nil {
			break
		}
		id = *folder.ParentID
	}
	util.Success(c, util.Response{"path": path})
}

// ListEntries returns the project's library entries, optionally filtered
// by folder (folder_id=root selects unfiled entries).
func (h *LibraryHandler) ListEntries(c *gin.Context) {
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

	var entries []models.LibraryEntry
	if err := q.Order("title ASC").Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list entries")
		return
	}
	util.Success(c, util.Response{"entries": entries})
}

func (h *LibraryHandler) CreateEntry(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		FolderID    *string `json:"folder_id"`
		IsPublic    bool    `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Title is required")
		return
	}

	if req.FolderID != nil {
		var folder models.LibraryFolder
		if err := h.db.First(&folder, "id = ? AND project_id = ?",
			*req.FolderID, project.ID).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Folder not found")
			return
		}
	}

	now := util.NowISO()
	entry := models.LibraryEntry{
		ID:          newID(),
		ProjectID:   project.ID,
		FolderID:    req.FolderID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *LibraryHandler) GetEntry(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.LibraryEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Library entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *LibraryHandler) UpdateEntry(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.LibraryEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Library entry")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		FolderID    *string `json:"folder_id"`
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
	if req.FolderID != nil {
		if *req.FolderID == "" {
			entry.FolderID = nil
		} else {
			var folder models.LibraryFolder
			if err := h.db.First(&folder, "id = ? AND project_id = ?",
				*req.FolderID, project.ID).Error; err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Folder not found")
				return
			}
			entry.FolderID = req.FolderID
		}
	}
	if req.IsPublic != nil {
		entry.IsPublic = *req.IsPublic
	}
	entry.UpdatedAt = util.NowISO()

	if err := h.db.Save(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *LibraryHandler) DeleteEntry(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	result := h.db.Where("id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Delete(&models.LibraryEntry{})
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete entry")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Library entry not found")
		return
	}
	util.Success(c, util.Response{"message": "Library entry deleted"})
}
