// Package handler contains the HTTP endpoints. Handlers follow one shape:
// a struct holding its dependencies, a constructor, and gin methods that
// bind input, check ownership, query and reply with the unified envelope.
package handler

import (
	"net/http"
	"strconv"

	"github.com/martijnhiemstra/selfsuffient/internal/middleware"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID() string { return uuid.NewString() }

// ownedProject loads the :projectID route parameter and verifies it belongs
// to the authenticated user. Projects of other users answer 404, not 403,
// so ids cannot be probed.
func ownedProject(c *gin.Context, db *gorm.DB) (*models.Project, *models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return nil, nil, false
	}

	var project models.Project
	err := db.First(&project, "id = ?", c.Param("projectID")).Error
	if err == gorm.ErrRecordNotFound || (err == nil && project.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Project not found")
		return nil, nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load project")
		return nil, nil, false
	}
	return &project, user, true
}

// ownedProjectID verifies a project id taken from a request body belongs
// to the user. Missing and foreign projects both answer 404, same as
// ownedProject.
func ownedProjectID(c *gin.Context, db *gorm.DB, user *models.User, projectID string) bool {
	var project models.Project
	err := db.First(&project, "id = ?", projectID).Error
	if err == gorm.ErrRecordNotFound || (err == nil && project.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Project not found")
		return false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load project")
		return false
	}
	return true
}

// mustUser fetches the authenticated user or writes a 401.
func mustUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return nil, false
	}
	return user, true
}

// parsePositiveInt parses a strictly positive integer query value.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// notFoundOrServerErr writes the right envelope for a First() error.
func notFoundOrServerErr(c *gin.Context, err error, what string) {
	if err == gorm.ErrRecordNotFound {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, what+" not found")
		return
	}
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load "+what)
}
