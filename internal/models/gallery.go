package models

// GalleryFolder is a node in the per-project folder tree. ParentID is nil
// for root folders.
type GalleryFolder struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string  `gorm:"index;size:36;not null" json:"project_id"`
	Name      string  `gorm:"size:128;not null" json:"name"`
	ParentID  *string `gorm:"index;size:36" json:"parent_id"`
	IsPublic  bool    `json:"is_public"`
	CreatedAt string  `gorm:"size:40" json:"created_at"`
	UpdatedAt string  `gorm:"size:40" json:"updated_at"`
}

// GalleryImage is an uploaded image, optionally placed in a folder.
type GalleryImage struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	ProjectID string  `gorm:"index;size:36;not null" json:"project_id"`
	FolderID  *string `gorm:"index;size:36" json:"folder_id"`
	Filename  string  `gorm:"size:255" json:"filename"`
	URL       string  `gorm:"size:255" json:"url"`
	CreatedAt string  `gorm:"size:40" json:"created_at"`
}
