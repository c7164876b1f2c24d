package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DiaryHandler struct {
	db *gorm.DB
}

func NewDiaryHandler(db *gorm.DB) *DiaryHandler {
	return &DiaryHandler{db: db}
}

// List returns a project's diary entries, newest entry date first.
func (h *DiaryHandler) List(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var entries []models.DiaryEntry
	if err := h.db.Where("project_id = ?", project.ID).
		Order("entry_datetime DESC").Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list diary entries")
		return
	}
	util.Success(c, util.Response{"entries": entries})
}

func (h *DiaryHandler) Create(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Title         string `json:"title" binding:"required"`
		Story         string `json:"story"`
		EntryDatetime string `json:"entry_datetime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Title is required")
		return
	}

	now := util.NowISO()
	if req.EntryDatetime == "" {
		req.EntryDatetime = now
	}
	entry := models.DiaryEntry{
		ID:            newID(),
		ProjectID:     project.ID,
		Title:         req.Title,
		Story:         req.Story,
		EntryDatetime: req.EntryDatetime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create diary entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *DiaryHandler) Get(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.DiaryEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Diary entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *DiaryHandler) Update(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var entry models.DiaryEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Diary entry")
		return
	}

	var req struct {
		Title         *string `json:"title"`
		Story         *string `json:"story"`
		EntryDatetime *string `json:"entry_datetime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Story != nil {
		entry.Story = *req.Story
	}
	if req.EntryDatetime != nil {
		entry.EntryDatetime = *req.EntryDatetime
	}
	entry.UpdatedAt = util.NowISO()

	if err := h.db.Save(&entry).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update diary entry")
		return
	}
	util.Success(c, util.Response{"entry": entry})
}

func (h *DiaryHandler) Delete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	result := h.db.Where("id = ? AND project_id = ?",
		c.Param("entryID"), project.ID).Delete(&models.DiaryEntry{})
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete diary entry")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Diary entry not found")
		return
	}
	util.Success(c, util.Response{"message": "Diary entry deleted"})
}
