package models

// BlogEntry is a post scoped to a project. Views are incremented only by the
// public detail endpoint.
type BlogEntry struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string `gorm:"index;size:36;not null" json:"project_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `json:"is_public"`
	Views       int64  `json:"views"`
	CreatedAt   string `gorm:"size:40" json:"created_at"`
	UpdatedAt   string `gorm:"size:40" json:"updated_at"`
}

// BlogImage is an uploaded image attached to a blog entry.
type BlogImage struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	BlogID    string `gorm:"index;size:36;not null" json:"blog_id"`
	Filename  string `gorm:"size:255" json:"filename"`
	URL       string `gorm:"size:255" json:"url"`
	CreatedAt string `gorm:"size:40" json:"created_at"`
}
