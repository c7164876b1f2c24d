package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PublicHandler serves read-only unauthenticated views of content whose
// owner flagged it public. View counters are bumped only on detail pages.
type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

// publicProject loads a project that is flagged public, or answers 404.
func (h *PublicHandler) publicProject(c *gin.Context) (*models.Project, bool) {
	var project models.Project
	err := h.db.First(&project, "id = ? AND is_public = ?",
		c.Param("projectID"), true).Error
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Project not found")
		return nil, false
	}
	return &project, true
}

func (h *PublicHandler) ListProjects(c *gin.Context) {
	var projects []models.Project
	if err := h.db.Where("is_public = ?", true).
		Order("created_at DESC").Find(&projects).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list projects")
		return
	}

	list := make([]util.Response, 0, len(projects))
	for i := range projects {
		var view models.ProjectView
		h.db.First(&view, "project_id = ?", projects[i].ID)
		list = append(list, util.Response{
			"id":          projects[i].ID,
			"name":        projects[i].Name,
			"description": projects[i].Description,
			"image":       projects[i].Image,
			"views":       view.Views,
			"created_at":  projects[i].CreatedAt,
		})
	}
	util.Success(c, util.Response{"projects": list})
}

// GetProject returns a public project and counts the visit.
func (h *PublicHandler) GetProject(c *gin.Context) {
	project, ok := h.publicProject(c)
	if !ok {
		return
	}

	var view models.ProjectView
	err := h.db.First(&view, "project_id = ?", project.ID).Error
	if err == gorm.ErrRecordNotFound {
		view = models.ProjectView{ProjectID: project.ID}
	}
	view.Views++
	view.LastViewed = util.NowISO()
	h.db.Save(&view)

	util.Success(c, util.Response{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"image":       project.Image,
		"views":       view.Views,
		"created_at":  project.CreatedAt,
	})
}

// ListBlog lists a public project's public blog entries. No counter bump.
func (h *PublicHandler) ListBlog(c *gin.Context) {
	project, ok := h.publicProject(c)
	if !ok {
		return
	}
	var entries []models.BlogEntry
	if err := h.db.Where("project_id = ? AND is_public = ?", project.ID, true).
		Order("created_at DESC").Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list blog entries")
		return
	}
	util.Success(c, util.Response{"entries": entries})
}

// GetBlog returns one public blog entry and increments its view counter.
func (h *PublicHandler) GetBlog(c *gin.Context) {
	project, ok := h.publicProject(c)
	if !ok {
		return
	}
	var entry models.BlogEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ? AND is_public = ?",
		c.Param("entryID"), project.ID, true).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Blog entry not found")
		return
	}

	h.db.Model(&entry).UpdateColumn("views", gorm.Expr("views + 1"))
	entry.Views++

	var images []models.BlogImage
	h.db.Where("blog_id = ?", entry.ID).Order("created_at ASC").Find(&images)
	util.Success(c, util.Response{"entry": entry, "images": images})
}

// ListGallery returns the public folders of a public project plus the
// images inside them and at the gallery root. Images in private folders
// stay hidden.
func (h *PublicHandler) ListGallery(c *gin.Context) {
	project, ok := h.publicProject(c)
	if !ok {
		return
	}

	var folders []models.GalleryFolder
	if err := h.db.Where("project_id = ? AND is_public = ?", project.ID, true).
		Order("name ASC").Find(&folders).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list gallery")
		return
	}

	folderIDs := make([]string, 0, len(folders))
	for _, f := range folders {
		folderIDs = append(folderIDs, f.ID)
	}

	q := h.db.Where("project_id = ? AND folder_id IS NULL", project.ID)
	if len(folderIDs) > 0 {
		q = q.Or("folder_id IN ?", folderIDs)
	}

	var images []models.GalleryImage
	h.db.Where(q).Order("created_at DESC").Find(&images)
	util.Success(c, util.Response{"folders": folders, "images": images})
}

// ListLibrary lists a public project's public library entries.
func (h *PublicHandler) ListLibrary(c *gin.Context) {
	project, ok := h.publicProject(c)
	if !ok {
		return
	}
	var entries []models.LibraryEntry
	if err := h.db.Where("project_id = ? AND is_public = ?", project.ID, true).
		Order("title ASC").Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list library entries")
		return
	}
	util.Success(c, util.Response{"entries": entries})
}

// GetLibrary returns one public library entry and increments its views.
func (h *PublicHandler) GetLibrary(c *gin.Context) {
	project, ok := h.publicProject(c)
	if !ok {
		return
	}
	var entry models.LibraryEntry
	if err := h.db.First(&entry, "id = ? AND project_id = ? AND is_public = ?",
		c.Param("entryID"), project.ID, true).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Library entry not found")
		return
	}

	h.db.Model(&entry).UpdateColumn("views", gorm.Expr("views + 1"))
	entry.Views++
	util.Success(c, util.Response{"entry": entry})
}
