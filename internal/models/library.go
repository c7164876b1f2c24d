package models

// LibraryFolder is a node in the per-project knowledge library tree.
type LibraryFolder struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string  `gorm:"index;size:36;not null" json:"project_id"`
	Name      string  `gorm:"size:128;not null" json:"name"`
	ParentID  *string `gorm:"index;size:36" json:"parent_id"`
	CreatedAt string  `gorm:"size:40" json:"created_at"`
	UpdatedAt string  `gorm:"size:40" json:"updated_at"`
}

// LibraryEntry is a knowledge article, optionally placed in a folder.
type LibraryEntry struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	ProjectID   string  `gorm:"index;size:36;not null" json:"project_id"`
	FolderID    *string `gorm:"index;size:36" json:"folder_id"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	IsPublic    bool    `json:"is_public"`
	Views       int64   `json:"views"`
	CreatedAt   string  `gorm:"size:40" json:"created_at"`
	UpdatedAt   string  `gorm:"size:40" json:"updated_at"`
}
