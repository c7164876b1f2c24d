package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// mustAdmin rejects non-admin callers with 403.
func (h *AdminHandler) mustAdmin(c *gin.Context) (*models.User, bool) {
	user, ok := mustUser(c)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Admin access required")
		return nil, false
	}
	return user, true
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := h.mustAdmin(c); !ok {
		return
	}
	var users []models.User
	if err := h.db.Order("created_at ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list users")
		return
	}

	list := make([]util.Response, 0, len(users))
	for i := range users {
		var projectCount int64
		h.db.Model(&models.Project{}).Where("user_id = ?", users[i].ID).Count(&projectCount)
		profile := userProfile(&users[i])
		profile["project_count"] = projectCount
		list = append(list, profile)
	}
	util.Success(c, util.Response{"users": list})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	if _, ok := h.mustAdmin(c); !ok {
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email and a password of at least 8 characters are required")
		return
	}

	var existing models.User
	if err := h.db.First(&existing, "email = ?", req.Email).Error; err == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "A user with that email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password")
		return
	}

	now := util.NowISO()
	user := models.User{
		ID:           newID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.db.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create user")
		return
	}
	util.Success(c, userProfile(&user))
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	admin, ok := h.mustAdmin(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("userID")).Error; err != nil {
		notFoundOrServerErr(c, err, "User")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		IsAdmin  *bool   `json:"is_admin"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.IsAdmin != nil {
		if user.ID == admin.ID && !*req.IsAdmin {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "You cannot revoke your own admin access")
			return
		}
		user.IsAdmin = *req.IsAdmin
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Password must be at least 8 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password")
			return
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = util.NowISO()

	if err := h.db.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update user")
		return
	}
	util.Success(c, userProfile(&user))
}

// DeleteUser removes a user and everything they own.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	admin, ok := h.mustAdmin(c)
	if !ok {
		return
	}
	if c.Param("userID") == admin.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "You cannot delete your own account")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("userID")).Error; err != nil {
		notFoundOrServerErr(c, err, "User")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		uid := user.ID
		projects := tx.Model(&models.Project{}).Select("id").Where("user_id = ?", uid)

		if err := tx.Where("task_id IN (?)",
			tx.Model(&models.RoutineTask{}).Select("id").Where("project_id IN (?)", projects),
		).Delete(&models.RoutineCompletion{}).Error; err != nil {
			return err
		}

		perProject := []interface{}{
			&models.DiaryEntry{}, &models.GalleryImage{}, &models.GalleryFolder{},
			&models.BlogEntry{}, &models.LibraryEntry{}, &models.LibraryFolder{},
			&models.Task{}, &models.RoutineTask{}, &models.ProjectView{},
		}
		for _, model := range perProject {
			if err := tx.Where("project_id IN (?)", projects).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("blog_id IN (?)",
			tx.Model(&models.BlogEntry{}).Select("id").Where("project_id IN (?)", projects),
		).Delete(&models.BlogImage{}).Error; err != nil {
			return err
		}

		perUser := []interface{}{
			&models.Checklist{}, &models.FinanceTransaction{}, &models.FinanceRecurring{},
			&models.FinanceSavingsGoal{}, &models.FinanceAccount{}, &models.FinanceCategory{},
			&models.ExpectedItem{}, &models.ExpensePeriod{}, &models.PasswordReset{},
		}
		if err := tx.Where("checklist_id IN (?)",
			tx.Model(&models.Checklist{}).Select("id").Where("user_id = ?", uid),
		).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}
		for _, model := range perUser {
			if err := tx.Where("user_id = ?", uid).Delete(model).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", uid).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete user")
		return
	}
	util.Success(c, util.Response{"message": "User deleted"})
}

// Stats reports instance-wide counts.
func (h *AdminHandler) Stats(c *gin.Context) {
	if _, ok := h.mustAdmin(c); !ok {
		return
	}

	stats := util.Response{}
	counters := []struct {
		name  string
		model interface{}
	}{
		{"users", &models.User{}},
		{"projects", &models.Project{}},
		{"diary_entries", &models.DiaryEntry{}},
		{"blog_entries", &models.BlogEntry{}},
		{"library_entries", &models.LibraryEntry{}},
		{"gallery_images", &models.GalleryImage{}},
		{"tasks", &models.Task{}},
		{"checklists", &models.Checklist{}},
		{"transactions", &models.FinanceTransaction{}},
	}
	for _, counter := range counters {
		var n int64
		h.db.Model(counter.model).Count(&n)
		stats[counter.name] = n
	}
	util.Success(c, stats)
}
