package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/models"

	"gorm.io/gorm"
)

// ReminderService builds and sends the daily email digest: today's tasks
// and unfinished routine steps across all of a user's projects.
type ReminderService struct {
	db    *gorm.DB
	email *EmailSender
}

func NewReminderService(db *gorm.DB, email *EmailSender) *ReminderService {
	return &ReminderService{db: db, email: email}
}

// TaskDueOn reports whether a task has an occurrence on the given day.
func TaskDueOn(task models.Task, day time.Time) bool {
	base, err := time.Parse(time.RFC3339, task.TaskDatetime)
	if err != nil {
		base, err = time.Parse("2006-01-02", task.TaskDatetime)
		if err != nil {
			return false
		}
	}
	base = base.UTC()
	day = day.UTC()

	baseDay := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if target.Before(baseDay) {
		return false
	}

	switch task.Recurrence {
	case "":
		return baseDay.Equal(target)
	case "daily":
		return true
	case "weekly":
		return baseDay.Weekday() == target.Weekday()
	case "monthly":
		return base.Day() == day.Day()
	case "yearly":
		return base.Month() == day.Month() && base.Day() == day.Day()
	}
	return false
}

// SendDailyDigests mails every opted-in user their digest for today and
// returns how many were sent. Users with nothing due are skipped.
func (s *ReminderService) SendDailyDigests() (int, error) {
	if !s.email.Enabled() {
		return 0, fmt.Errorf("smtp is not configured")
	}

	var users []models.User
	if err := s.db.Where("daily_reminders = ?", true).Find(&users).Error; err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}

	today := time.Now().UTC()
	sent := 0
	for i := range users {
		body, empty, err := s.digestFor(&users[i], today)
		if err != nil {
			return sent, err
		}
		if empty {
			continue
		}
		if err := s.email.SendDailyReminder(users[i].Email, body); err != nil {
			// One bad mailbox should not stop the batch.
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *ReminderService) digestFor(user *models.User, day time.Time) (body string, empty bool, err error) {
	var projects []models.Project
	if err := s.db.Where("user_id = ?", user.ID).Find(&projects).Error; err != nil {
		return "", true, fmt.Errorf("load projects: %w", err)
	}

	dateStr := day.Format("2006-01-02")
	var sections []string

	for _, project := range projects {
		var tasks []models.Task
		s.db.Where("project_id = ?", project.ID).Find(&tasks)
		var due []models.Task
		for _, task := range tasks {
			if TaskDueOn(task, day) {
				due = append(due, task)
			}
		}

		var pending []models.RoutineTask
		s.db.Where("project_id = ? AND id NOT IN (?)", project.ID,
			s.db.Model(&models.RoutineCompletion{}).Select("task_id").
				Where("completed_date = ?", dateStr)).
			Order("sort_order ASC").Find(&pending)

		if len(due) == 0 && len(pending) == 0 {
			continue
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "<h3>%s</h3>", project.Name)
		if len(due) > 0 {
			sb.WriteString("<p>Tasks today:</p><ul>")
			for _, task := range due {
				fmt.Fprintf(&sb, "<li>%s</li>", task.Title)
			}
			sb.WriteString("</ul>")
		}
		if len(pending) > 0 {
			sb.WriteString("<p>Routine steps still open:</p><ul>")
			for _, step := range pending {
				fmt.Fprintf(&sb, "<li>[%s] %s</li>", step.RoutineType, step.Title)
			}
			sb.WriteString("</ul>")
		}
		sections = append(sections, sb.String())
	}

	if len(sections) == 0 {
		return "", true, nil
	}

	body = fmt.Sprintf("<h2>Your day, %s</h2>%s", dateStr, strings.Join(sections, "\n"))
	return body, false, nil
}
