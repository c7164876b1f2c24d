package models

// Task is a dated (optionally recurring) todo scoped to a project.
// Recurrence is one of "", daily, weekly, monthly, yearly; occurrences are
// expanded on read by the dashboard, never materialized.
type Task struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	ProjectID    string `gorm:"index;size:36;not null" json:"project_id"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	TaskDatetime string `gorm:"size:40;index" json:"task_datetime"`
	IsAllDay     bool   `json:"is_all_day"`
	Recurrence   string `gorm:"size:16" json:"recurrence"`
	CreatedAt    string `gorm:"size:40" json:"created_at"`
	UpdatedAt    string `gorm:"size:40" json:"updated_at"`
}
