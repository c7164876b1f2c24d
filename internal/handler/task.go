package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var validRecurrence = map[string]bool{
	"":        true,
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
}

type TaskHandler struct {
	db *gorm.DB
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{db: db}
}

// List returns the project's tasks ordered by task date. Recurring tasks
// appear once; occurrence expansion happens on the dashboard.
func (h *TaskHandler) List(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	q := h.db.Where("project_id = ?", project.ID)
	if from := c.Query("from"); from != "" {
		q = q.Where("task_datetime >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("task_datetime <= ?", to)
	}

	var tasks []models.Task
	if err := q.Order("task_datetime ASC").Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list tasks")
		return
	}
	util.Success(c, util.Response{"tasks": tasks})
}

func (h *TaskHandler) Create(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		TaskDatetime string `json:"task_datetime" binding:"required"`
		IsAllDay     bool   `json:"is_all_day"`
		Recurrence   string `json:"recurrence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Title and task_datetime are required")
		return
	}
	if !validRecurrence[req.Recurrence] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Recurrence must be daily, weekly, monthly or yearly")
		return
	}

	now := util.NowISO()
	task := models.Task{
		ID:           newID(),
		ProjectID:    project.ID,
		Title:        req.Title,
		Description:  req.Description,
		TaskDatetime: req.TaskDatetime,
		IsAllDay:     req.IsAllDay,
		Recurrence:   req.Recurrence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.db.Create(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create task")
		return
	}
	util.Success(c, util.Response{"task": task})
}

func (h *TaskHandler) Get(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Task")
		return
	}
	util.Success(c, util.Response{"task": task})
}

func (h *TaskHandler) Update(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Task")
		return
	}

	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		TaskDatetime *string `json:"task_datetime"`
		IsAllDay     *bool   `json:"is_all_day"`
		Recurrence   *string `json:"recurrence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.TaskDatetime != nil {
		task.TaskDatetime = *req.TaskDatetime
	}
	if req.IsAllDay != nil {
		task.IsAllDay = *req.IsAllDay
	}
	if req.Recurrence != nil {
		if !validRecurrence[*req.Recurrence] {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Recurrence must be daily, weekly, monthly or yearly")
			return
		}
		task.Recurrence = *req.Recurrence
	}
	task.UpdatedAt = util.NowISO()

	if err := h.db.Save(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update task")
		return
	}
	util.Success(c, util.Response{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	result := h.db.Where("id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Delete(&models.Task{})
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete task")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Task not found")
		return
	}
	util.Success(c, util.Response{"message": "Task deleted"})
}
