package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxOccurrences bounds recurrence expansion per task.
const maxOccurrences = 100

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// expandOccurrences lists the occurrence times of a recurring task inside
// the [from, to] window, inclusive. A task without recurrence yields its
// own time when it falls inside the window.
func expandOccurrences(base time.Time, recurrence string, from, to time.Time) []time.Time {
	var out []time.Time

	step := func(t time.Time) time.Time {
		switch recurrence {
		case "daily":
			return t.AddDate(0, 0, 1)
		case "weekly":
			return t.AddDate(0, 0, 7)
		case "monthly":
			return t.AddDate(0, 1, 0)
		case "yearly":
			return t.AddDate(1, 0, 0)
		}
		return t
	}

	if recurrence == "" {
		if !base.Before(from) && !base.After(to) {
			out = append(out, base)
		}
		return out
	}

	t := base
	for t.Before(from) {
		next := step(t)
		if !next.After(t) {
			return out
		}
		t = next
	}
	for !t.After(to) && len(out) < maxOccurrences {
		out = append(out, t)
		t = step(t)
	}
	return out
}

// Data assembles the cross-project digest: today's task occurrences and
// routine steps still open today, each row carrying its project's name.
func (h *DashboardHandler) Data(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var projects []models.Project
	if err := h.db.Where("user_id = ?", user.ID).Find(&projects).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load projects")
		return
	}
	projectIDs := make([]string, 0, len(projects))
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
		projectNames[p.ID] = p.Name
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1).Add(-time.Second)
	today := util.Today()

	todayTasks := make([]util.Response, 0)
	startup := make([]util.Response, 0)
	shutdown := make([]util.Response, 0)

	if len(projectIDs) > 0 {
		var tasks []models.Task
		if err := h.db.Where("project_id IN ?", projectIDs).Find(&tasks).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load tasks")
			return
		}
		for i := range tasks {
			base, err := time.Parse(time.RFC3339, tasks[i].TaskDatetime)
			if err != nil {
				base, err = time.Parse("2006-01-02", tasks[i].TaskDatetime)
				if err != nil {
					continue
				}
			}
			for _, at := range expandOccurrences(base.UTC(), tasks[i].Recurrence, from, to) {
				todayTasks = append(todayTasks, util.Response{
					"task_id":      tasks[i].ID,
					"project_id":   tasks[i].ProjectID,
					"project_name": projectNames[tasks[i].ProjectID],
					"title":        tasks[i].Title,
					"description":  tasks[i].Description,
					"at":           at.Format(time.RFC3339),
					"is_all_day":   tasks[i].IsAllDay,
					"recurrence":   tasks[i].Recurrence,
				})
			}
		}
		sort.Slice(todayTasks, func(i, j int) bool {
			return todayTasks[i]["at"].(string) < todayTasks[j]["at"].(string)
		})

		var steps []models.RoutineTask
		if err := h.db.Where("project_id IN ? AND id NOT IN (?)", projectIDs,
			h.db.Model(&models.RoutineCompletion{}).Select("task_id").
				Where("completed_date = ?", today)).
			Order("sort_order ASC").Find(&steps).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load routines")
			return
		}
		for i := range steps {
			row := util.Response{
				"id":           steps[i].ID,
				"project_id":   steps[i].ProjectID,
				"project_name": projectNames[steps[i].ProjectID],
				"routine_type": steps[i].RoutineType,
				"title":        steps[i].Title,
				"description":  steps[i].Description,
				"order":        steps[i].Order,
			}
			if steps[i].RoutineType == "shutdown" {
				shutdown = append(shutdown, row)
			} else {
				startup = append(startup, row)
			}
		}
	}

	util.Success(c, util.Response{
		"today_tasks":               todayTasks,
		"incomplete_startup_tasks":  startup,
		"incomplete_shutdown_tasks": shutdown,
		"projects_count":            len(projects),
		"date":                      today,
	})
}

// AllTasks returns every task across the user's projects for the calendar
// view, optionally narrowed to a datetime range.
func (h *DashboardHandler) AllTasks(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var projects []models.Project
	if err := h.db.Where("user_id = ?", user.ID).Find(&projects).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load projects")
		return
	}
	projectIDs := make([]string, 0, len(projects))
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
		projectNames[p.ID] = p.Name
	}

	list := make([]util.Response, 0)
	if len(projectIDs) > 0 {
		q := h.db.Where("project_id IN ?", projectIDs)
		start := c.Query("start_date")
		end := c.Query("end_date")
		if start != "" && end != "" {
			q = q.Where("task_datetime >= ? AND task_datetime <= ?", start, end)
		}

		var tasks []models.Task
		if err := q.Order("task_datetime ASC").Find(&tasks).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load tasks")
			return
		}
		for i := range tasks {
			list = append(list, util.Response{
				"id":            tasks[i].ID,
				"project_id":    tasks[i].ProjectID,
				"project_name":  projectNames[tasks[i].ProjectID],
				"title":         tasks[i].Title,
				"description":   tasks[i].Description,
				"task_datetime": tasks[i].TaskDatetime,
				"is_all_day":    tasks[i].IsAllDay,
				"recurrence":    tasks[i].Recurrence,
			})
		}
	}

	util.Success(c, util.Response{"tasks": list, "total": len(list)})
}

// Overview assembles the project dashboard: upcoming task occurrences,
// today's routine status, recent diary entries and content counts.
func (h *DashboardHandler) Overview(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	days := 7
	if v := c.Query("days"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			days = n
		} else {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Days must be a positive number")
			return
		}
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, days).Add(-time.Second)

	var tasks []models.Task
	if err := h.db.Where("project_id = ?", project.ID).Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load tasks")
		return
	}

	type occurrence struct {
		At   string
		Task *models.Task
	}
	var occurrences []occurrence
	for i := range tasks {
		base, err := time.Parse(time.RFC3339, tasks[i].TaskDatetime)
		if err != nil {
			// Date-only task times count as midnight.
			base, err = time.Parse("2006-01-02", tasks[i].TaskDatetime)
			if err != nil {
				continue
			}
		}
		for _, at := range expandOccurrences(base.UTC(), tasks[i].Recurrence, from, to) {
			occurrences = append(occurrences, occurrence{
				At:   at.Format(time.RFC3339),
				Task: &tasks[i],
			})
		}
	}
	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].At < occurrences[j].At
	})

	upcoming := make([]util.Response, 0, len(occurrences))
	for _, occ := range occurrences {
		upcoming = append(upcoming, util.Response{
			"task_id":     occ.Task.ID,
			"title":       occ.Task.Title,
			"description": occ.Task.Description,
			"at":          occ.At,
			"is_all_day":  occ.Task.IsAllDay,
			"recurrence":  occ.Task.Recurrence,
		})
	}

	today := util.Today()
	routines := util.Response{}
	for _, routineType := range []string{"startup", "shutdown"} {
		var total int64
		h.db.Model(&models.RoutineTask{}).
			Where("project_id = ? AND routine_type = ?", project.ID, routineType).
			Count(&total)
		var done int64
		h.db.Model(&models.RoutineCompletion{}).
			Where("completed_date = ? AND task_id IN (?)", today,
				h.db.Model(&models.RoutineTask{}).Select("id").
					Where("project_id = ? AND routine_type = ?", project.ID, routineType)).
			Count(&done)
		routines[routineType] = util.Response{"total": total, "done": done}
	}

	var diary []models.DiaryEntry
	h.db.Where("project_id = ?", project.ID).
		Order("entry_datetime DESC").Limit(5).Find(&diary)

	counts := util.Response{}
	countModels := []struct {
		name  string
		model interface{}
	}{
		{"diary_entries", &models.DiaryEntry{}},
		{"blog_entries", &models.BlogEntry{}},
		{"library_entries", &models.LibraryEntry{}},
		{"gallery_images", &models.GalleryImage{}},
		{"tasks", &models.Task{}},
	}
	for _, cm := range countModels {
		var n int64
		h.db.Model(cm.model).Where("project_id = ?", project.ID).Count(&n)
		counts[cm.name] = n
	}

	util.Success(c, util.Response{
		"project":        projectJSON(project, 0),
		"upcoming_tasks": upcoming,
		"routines":       routines,
		"recent_diary":   diary,
		"counts":         counts,
		"window_days":    days,
	})
}
