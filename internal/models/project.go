package models

// Project is the top-level user-owned container for all other resources.
// Deleting a project cascades deletion of diary, gallery, blog, library,
// task, routine and checklist records. Finance records are intentionally
// left in place.
type Project struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	UserID      string `gorm:"index;size:36;not null" json:"user_id"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:255" json:"image"`
	IsPublic    bool   `gorm:"index" json:"is_public"`
	CreatedAt   string `gorm:"size:40" json:"created_at"`
	UpdatedAt   string `gorm:"size:40" json:"updated_at"`
}

// ProjectView tracks the public view counter for a project.
type ProjectView struct {
	ProjectID  string `gorm:"primaryKey;size:36" json:"project_id"`
	Views      int64  `json:"views"`
	LastViewed string `gorm:"size:40" json:"last_viewed"`
}
