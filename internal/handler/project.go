package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewProjectHandler(db *gorm.DB, cfg *config.Config) *ProjectHandler {
	return &ProjectHandler{db: db, cfg: cfg}
}

func projectJSON(p *models.Project, views int64) util.Response {
	return util.Response{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"image":       p.Image,
		"is_public":   p.IsPublic,
		"views":       views,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

// List returns the user's projects, newest first.
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var projects []models.Project
	if err := h.db.Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&projects).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list projects")
		return
	}

	list := make([]util.Response, 0, len(projects))
	for i := range projects {
		var view models.ProjectView
		h.db.First(&view, "project_id = ?", projects[i].ID)
		list = append(list, projectJSON(&projects[i], view.Views))
	}
	util.Success(c, util.Response{"projects": list})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project name is required")
		return
	}

	now := util.NowISO()
	project := models.Project{
		ID:          newID(),
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.Create(&project).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create project")
		return
	}
	util.Success(c, projectJSON(&project, 0))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}
	var view models.ProjectView
	h.db.First(&view, "project_id = ?", project.ID)
	util.Success(c, projectJSON(project, view.Views))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Image       *string `json:"image"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project name cannot be empty")
			return
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Image != nil {
		project.Image = *req.Image
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}
	project.UpdatedAt = util.NowISO()

	if err := h.db.Save(project).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update project")
		return
	}
	var view models.ProjectView
	h.db.First(&view, "project_id = ?", project.ID)
	util.Success(c, projectJSON(project, view.Views))
}

// UploadImage stores a new cover image and replaces the previous one.
func (h *ProjectHandler) UploadImage(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	filename, ok := saveImageUpload(c, h.cfg, "file")
	if !ok {
		return
	}

	old := project.Image
	project.Image = filename
	project.UpdatedAt = util.NowISO()
	if err := h.db.Save(project).Error; err != nil {
		removeUpload(h.cfg, filename)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update project")
		return
	}
	if old != "" && old != filename {
		removeUpload(h.cfg, old)
	}

	var view models.ProjectView
	h.db.First(&view, "project_id = ?", project.ID)
	util.Success(c, projectJSON(project, view.Views))
}

// Delete removes a project and its content modules in one transaction.
// Finance and budget records reference the project but survive deletion.
func (h *ProjectHandler) Delete(c *gin.Context) {
	project, _, ok := ownedProject(c, h.db)
	if !ok {
		return
	}

	var filenames []string
	h.db.Model(&models.GalleryImage{}).Where("project_id = ?", project.ID).
		Pluck("filename", &filenames)
	var blogFiles []string
	h.db.Model(&models.BlogImage{}).Where("blog_id IN (?)",
		h.db.Model(&models.BlogEntry{}).Select("id").Where("project_id = ?", project.ID),
	).Pluck("filename", &blogFiles)
	filenames = append(filenames, blogFiles...)
	if project.Image != "" {
		filenames = append(filenames, project.Image)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		pid := project.ID

		if err := tx.Where("project_id = ?", pid).Delete(&models.DiaryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.GalleryImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.GalleryFolder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id IN (?)",
			tx.Model(&models.BlogEntry{}).Select("id").Where("project_id = ?", pid),
		).Delete(&models.BlogImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.BlogEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.LibraryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.LibraryFolder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)",
			tx.Model(&models.RoutineTask{}).Select("id").Where("project_id = ?", pid),
		).Delete(&models.RoutineCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.RoutineTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("checklist_id IN (?)",
			tx.Model(&models.Checklist{}).Select("id").Where("project_id = ?", pid),
		).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.Checklist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", pid).Delete(&models.ProjectView{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", pid).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete project")
		return
	}

	for _, f := range filenames {
		removeUpload(h.cfg, f)
	}
	util.Success(c, util.Response{"message": "Project deleted"})
}
