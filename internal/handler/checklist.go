package handler

import (
	"database/sql"
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChecklistHandler struct {
	db *gorm.DB
}

func NewChecklistHandler(db *gorm.DB) *ChecklistHandler {
	return &ChecklistHandler{db: db}
}

// ownedChecklist loads a checklist by the :checklistID parameter and
// verifies ownership.
func (h *ChecklistHandler) ownedChecklist(c *gin.Context) (*models.Checklist, bool) {
	user, ok := mustUser(c)
	if !ok {
		return nil, false
	}
	var list models.Checklist
	err := h.db.First(&list, "id = ?", c.Param("checklistID")).Error
	if err == gorm.ErrRecordNotFound || (err == nil && list.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Checklist not found")
		return nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load checklist")
		return nil, false
	}
	return &list, true
}

// List returns the user's checklists with item counts, optionally filtered
// by project.
func (h *ChecklistHandler) List(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}

	var lists []models.Checklist
	if err := q.Order("created_at DESC").Find(&lists).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list checklists")
		return
	}

	out := make([]util.Response, 0, len(lists))
	for i := range lists {
		var total, done int64
		h.db.Model(&models.ChecklistItem{}).Where("checklist_id = ?", lists[i].ID).Count(&total)
		h.db.Model(&models.ChecklistItem{}).Where("checklist_id = ? AND is_done = ?", lists[i].ID, true).Count(&done)
		out = append(out, util.Response{
			"id":          lists[i].ID,
			"project_id":  lists[i].ProjectID,
			"name":        lists[i].Name,
			"description": lists[i].Description,
			"item_count":  total,
			"done_count":  done,
			"created_at":  lists[i].CreatedAt,
			"updated_at":  lists[i].UpdatedAt,
		})
	}
	util.Success(c, util.Response{"checklists": out})
}

func (h *ChecklistHandler) Create(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID   string `json:"project_id" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id and name are required")
		return
	}

	var project models.Project
	err := h.db.First(&project, "id = ?", req.ProjectID).Error
	if err != nil || project.UserID != user.ID {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Project not found")
		return
	}

	now := util.NowISO()
	list := models.Checklist{
		ID:          newID(),
		UserID:      user.ID,
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create checklist")
		return
	}
	util.Success(c, util.Response{"checklist": list})
}

func (h *ChecklistHandler) Get(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	var items []models.ChecklistItem
	if err := h.db.Where("checklist_id = ?", list.ID).
		Order("sort_order ASC").Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load checklist items")
		return
	}
	util.Success(c, util.Response{"checklist": list, "items": items})
}

func (h *ChecklistHandler) Update(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		list.Name = *req.Name
	}
	if req.Description != nil {
		list.Description = *req.Description
	}
	list.UpdatedAt = util.NowISO()

	if err := h.db.Save(list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update checklist")
		return
	}
	util.Success(c, util.Response{"checklist": list})
}

func (h *ChecklistHandler) Delete(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("checklist_id = ?", list.ID).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(list).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete checklist")
		return
	}
	util.Success(c, util.Response{"message": "Checklist deleted"})
}

func (h *ChecklistHandler) AddItem(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}

	var req struct {
		Text  string `json:"text" binding:"required"`
		Order *int   `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Item text is required")
		return
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		var max sql.NullInt64
		h.db.Model(&models.ChecklistItem{}).
			Where("checklist_id = ?", list.ID).
			Select("MAX(sort_order)").Scan(&max)
		if max.Valid {
			order = int(max.Int64) + 1
		}
	}

	now := util.NowISO()
	item := models.ChecklistItem{
		ID:          newID(),
		ChecklistID: list.ID,
		Text:        req.Text,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to add item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *ChecklistHandler) UpdateItem(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	var item models.ChecklistItem
	if err := h.db.First(&item, "id = ? AND checklist_id = ?",
		c.Param("itemID"), list.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Checklist item")
		return
	}

	var req struct {
		Text   *string `json:"text"`
		IsDone *bool   `json:"is_done"`
		Order  *int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Text != nil {
		item.Text = *req.Text
	}
	if req.IsDone != nil {
		item.IsDone = *req.IsDone
	}
	if req.Order != nil {
		item.Order = *req.Order
	}
	item.UpdatedAt = util.NowISO()

	if err := h.db.Save(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

// ToggleItem flips an item's done flag.
func (h *ChecklistHandler) ToggleItem(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	var item models.ChecklistItem
	if err := h.db.First(&item, "id = ? AND checklist_id = ?",
		c.Param("itemID"), list.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Checklist item")
		return
	}

	item.IsDone = !item.IsDone
	item.UpdatedAt = util.NowISO()
	if err := h.db.Save(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *ChecklistHandler) DeleteItem(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	result := h.db.Where("id = ? AND checklist_id = ?",
		c.Param("itemID"), list.ID).Delete(&models.ChecklistItem{})
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete item")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Checklist item not found")
		return
	}
	util.Success(c, util.Response{"message": "Item deleted"})
}

// Reset clears the done flag on every item of the checklist.
func (h *ChecklistHandler) Reset(c *gin.Context) {
	list, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	err := h.db.Model(&models.ChecklistItem{}).
		Where("checklist_id = ?", list.ID).
		Updates(map[string]interface{}{"is_done": false, "updated_at": util.NowISO()}).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to reset checklist")
		return
	}
	util.Success(c, util.Response{"message": "Checklist reset"})
}
