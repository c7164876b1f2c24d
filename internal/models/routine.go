package models

// RoutineTask is an ordered step in a project's startup or shutdown routine.
type RoutineTask struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string `gorm:"index;size:36;not null" json:"project_id"`
	RoutineType string `gorm:"size:16;index;not null" json:"routine_type"` // startup / shutdown
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"column:sort_order" json:"order"`
	CreatedAt   string `gorm:"size:40" json:"created_at"`
}

// RoutineCompletion marks a routine task done for one calendar day.
// Scoped by (task_id, completed_date) only; project and routine type follow
// from the task row.
type RoutineCompletion struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	TaskID        string `gorm:"size:36;not null;uniqueIndex:idx_completion_day" json:"task_id"`
	CompletedDate string `gorm:"size:10;not null;uniqueIndex:idx_completion_day" json:"completed_date"`
	CreatedAt     string `gorm:"size:40" json:"created_at"`
}
