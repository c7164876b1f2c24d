package handler

import (
	"net/http"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/service"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CalendarHandler struct {
	db       *gorm.DB
	calendar *service.CalendarService
}

func NewCalendarHandler(db *gorm.DB, calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{db: db, calendar: calendar}
}

// Status reports whether the integration is configured server-side and
// connected for this user.
func (h *CalendarHandler) Status(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{
		"configured":  h.calendar.Enabled(),
		"connected":   user.GoogleToken != "",
		"calendar_id": user.GoogleCalendarID,
	})
}

// AuthURL hands out the Google consent URL. The user's id travels in the
// OAuth state parameter.
func (h *CalendarHandler) AuthURL(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	if !h.calendar.Enabled() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Google Calendar is not configured on this server")
		return
	}
	util.Success(c, util.Response{"auth_url": h.calendar.AuthURL(user.ID)})
}

// Callback finishes the OAuth flow: exchanges the code and stores the
// token on the user named by the state parameter.
func (h *CalendarHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Missing code or state")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", state).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Unknown state")
		return
	}

	token, err := h.calendar.Exchange(c.Request.Context(), code)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Failed to complete Google authorization")
		return
	}
	raw, err := service.TokenToJSON(token)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store Google token")
		return
	}

	user.GoogleToken = raw
	user.UpdatedAt = util.NowISO()
	if err := h.db.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store Google token")
		return
	}
	util.Success(c, util.Response{"message": "Google Calendar connected"})
}

// Disconnect drops the stored token and calendar selection.
func (h *CalendarHandler) Disconnect(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	user.GoogleToken = ""
	user.GoogleCalendarID = ""
	user.UpdatedAt = util.NowISO()
	if err := h.db.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to disconnect")
		return
	}
	util.Success(c, util.Response{"message": "Google Calendar disconnected"})
}

// ListCalendars shows the connected account's calendars so the user can
// pick a target.
func (h *CalendarHandler) ListCalendars(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	if user.GoogleToken == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Google Calendar is not connected")
		return
	}

	token, err := service.TokenFromJSON(user.GoogleToken)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Stored Google token is invalid, reconnect")
		return
	}
	calendars, err := h.calendar.ListCalendars(c.Request.Context(), token)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list calendars")
		return
	}
	util.Success(c, util.Response{"calendars": calendars})
}

// SelectCalendar stores the calendar tasks will be synced to.
func (h *CalendarHandler) SelectCalendar(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req struct {
		CalendarID string `json:"calendar_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Calendar id is required")
		return
	}
	user.GoogleCalendarID = req.CalendarID
	user.UpdatedAt = util.NowISO()
	if err := h.db.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store calendar selection")
		return
	}
	util.Success(c, util.Response{"message": "Calendar selected"})
}

// SyncTask pushes one task to the selected calendar as an event.
func (h *CalendarHandler) SyncTask(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	if user.GoogleToken == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Google Calendar is not connected")
		return
	}

	var req struct {
		TaskID string `json:"task_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Task id is required")
		return
	}

	var task models.Task
	err := h.db.Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.id = ? AND projects.user_id = ?", req.TaskID, user.ID).
		First(&task).Error
	if err != nil {
		notFoundOrServerErr(c, err, "Task")
		return
	}

	start, err := time.Parse(time.RFC3339, task.TaskDatetime)
	if err != nil {
		start, err = time.Parse("2006-01-02", task.TaskDatetime)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Task has no usable date")
			return
		}
	}

	token, err := service.TokenFromJSON(user.GoogleToken)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Stored Google token is invalid, reconnect")
		return
	}

	eventID, err := h.calendar.CreateEvent(c.Request.Context(), token, user.GoogleCalendarID, service.Event{
		Summary:     task.Title,
		Description: task.Description,
		Start:       start,
		AllDay:      task.IsAllDay,
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create calendar event")
		return
	}
	util.Success(c, util.Response{"event_id": eventID})
}
