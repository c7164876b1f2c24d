package handler

import (
	"database/sql"
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var validRoutineType = map[string]bool{
	"startup":  true,
	"shutdown": true,
}

type RoutineHandler struct {
	db *gorm.DB
}

func NewRoutineHandler(db *gorm.DB) *RoutineHandler {
	return &RoutineHandler{db: db}
}

// List returns the routine tasks of one type in order, each with today's
// completion state. The date can be overridden with ?date=YYYY-MM-DD.
func (h *RoutineHandler) List(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	routineType := c.Query("type")
	if routineType != "" && !validRoutineType[routineType] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Type must be startup or shutdown")
		return
	}

	date := c.DefaultQuery("date", util.Today())
	if err := util.ValidateDate(date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid date")
		return
	}

	q := h.db.Where("project_id = ?", project.ID)
	if routineType != "" {
		q = q.Where("routine_type = ?", routineType)
	}

	var tasks []models.RoutineTask
	if err := q.Order("sort_order ASC").Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list routine tasks")
		return
	}

	taskIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	done := make(map[string]bool)
	if len(taskIDs) > 0 {
		var completions []models.RoutineCompletion
		h.db.Where("task_id IN ? AND completed_date = ?", taskIDs, date).Find(&completions)
		for _, comp := range completions {
			done[comp.TaskID] = true
		}
	}

	list := make([]util.Response, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, util.Response{
			"id":           t.ID,
			"routine_type": t.RoutineType,
			"title":        t.Title,
			"description":  t.Description,
			"order":        t.Order,
			"is_completed": done[t.ID],
			"created_at":   t.CreatedAt,
		})
	}
	util.Success(c, util.Response{"tasks": list, "date": date})
}

func (h *RoutineHandler) Create(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		RoutineType string `json:"routine_type" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Order       *int   `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Routine type and title are required")
		return
	}
	if !validRoutineType[req.RoutineType] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Type must be startup or shutdown")
		return
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		// Append at the end of the routine.
		var max sql.NullInt64
		h.db.Model(&models.RoutineTask{}).
			Where("project_id = ? AND routine_type = ?", project.ID, req.RoutineType).
			Select("MAX(sort_order)").Scan(&max)
		if max.Valid {
			order = int(max.Int64) + 1
		}
	}

	task := models.RoutineTask{
		ID:          newID(),
		ProjectID:   project.ID,
		RoutineType: req.RoutineType,
		Title:       req.Title,
		Description: req.Description,
		Order:       order,
		CreatedAt:   util.NowISO(),
	}
	if err := h.db.Create(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create routine task")
		return
	}
	util.Success(c, util.Response{"task": task})
}

func (h *RoutineHandler) Update(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var task models.RoutineTask
	if err := h.db.First(&task, "id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Routine task")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Order       *int    `json:"order"`
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
	if req.Order != nil {
		task.Order = *req.Order
	}

	if err := h.db.Save(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update routine task")
		return
	}
	util.Success(c, util.Response{"task": task})
}

func (h *RoutineHandler) Delete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var task models.RoutineTask
	if err := h.db.First(&task, "id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Routine task")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.RoutineCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete routine task")
		return
	}
	util.Success(c, util.Response{"message": "Routine task deleted"})
}

// Complete marks a routine task done for one day. Completing an already
// completed day is a no-op.
func (h *RoutineHandler) Complete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var task models.RoutineTask
	if err := h.db.First(&task, "id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Routine task")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Date == "" {
		req.Date = util.Today()
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid date")
		return
	}

	var existing models.RoutineCompletion
	err := h.db.First(&existing, "task_id = ? AND completed_date = ?", task.ID, req.Date).Error
	if err == nil {
		util.Success(c, util.Response{"completion": existing})
		return
	}
	if err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to complete routine task")
		return
	}

	completion := models.RoutineCompletion{
		ID:            newID(),
		TaskID:        task.ID,
		CompletedDate: req.Date,
		CreatedAt:     util.NowISO(),
	}
	if err := h.db.Create(&completion).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to complete routine task")
		return
	}
	util.Success(c, util.Response{"completion": completion})
}

// Uncomplete clears a day's completion.
func (h *RoutineHandler) Uncomplete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var task models.RoutineTask
	if err := h.db.First(&task, "id = ? AND project_id = ?",
		c.Param("taskID"), project.ID).Error; err != nil {
		notFoundOrServerErr(c, err, "Routine task")
		return
	}

	date := c.DefaultQuery("date", util.Today())
	if err := util.ValidateDate(date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid date")
		return
	}

	if err := h.db.Where("task_id = ? AND completed_date = ?", task.ID, date).
		Delete(&models.RoutineCompletion{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to clear completion")
		return
	}
	util.Success(c, util.Response{"message": "Completion cleared"})
}
