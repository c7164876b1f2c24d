package models

// Checklist is a reusable list of items scoped to a project.
type Checklist struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	UserID      string `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID   string `gorm:"index;size:36;not null" json:"project_id"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CreatedAt   string `gorm:"size:40" json:"created_at"`
	UpdatedAt   string `gorm:"size:40" json:"updated_at"`
}

// ChecklistItem is an ordered item with a done flag. "Reset" bulk-clears the
// done flags of a checklist.
type ChecklistItem struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	ChecklistID string `gorm:"index;size:36;not null" json:"checklist_id"`
	Text        string `gorm:"size:512;not null" json:"text"`
	IsDone      bool   `json:"is_done"`
	Order       int    `gorm:"column:sort_order" json:"order"`
	CreatedAt   string `gorm:"size:40" json:"created_at"`
	UpdatedAt   string `gorm:"size:40" json:"updated_at"`
}
