package models

// DiaryEntry is a dated journal entry scoped to a project.
type DiaryEntry struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	ProjectID     string `gorm:"index;size:36;not null" json:"project_id"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Story         string `gorm:"type:text" json:"story"`
	EntryDatetime string `gorm:"size:40;index" json:"entry_datetime"`
	CreatedAt     string `gorm:"size:40" json:"created_at"`
	UpdatedAt     string `gorm:"size:40" json:"updated_at"`
}
