package handler

import (
	"net/http"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/service"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = time.Hour

type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	email *service.EmailSender
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, email *service.EmailSender) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, email: email}
}

func userProfile(u *models.User) util.Response {
	return util.Response{
		"id":              u.ID,
		"email":           u.Email,
		"name":            u.Name,
		"is_admin":        u.IsAdmin,
		"daily_reminders": u.DailyReminders,
		"created_at":      u.CreatedAt,
	}
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email and password are required")
		return
	}

	var user models.User
	err := h.db.First(&user, "email = ?", req.Email).Error
	if err == gorm.ErrRecordNotFound ||
		(err == nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Incorrect email or password")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Login failed")
		return
	}

	ttl := time.Duration(h.cfg.JWT.ExpireHours) * time.Hour
	token, err := util.GenerateToken(h.cfg.JWT.Secret, user.ID, user.Email, ttl)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to issue token")
		return
	}

	util.Success(c, util.Response{
		"access_token": token,
		"token_type":   "bearer",
		"user":         userProfile(&user),
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	util.Success(c, userProfile(user))
}

// UpdateMe changes profile settings. Pointer fields distinguish "absent"
// from zero values.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		Name           *string `json:"name"`
		DailyReminders *bool   `json:"daily_reminders"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.DailyReminders != nil {
		user.DailyReminders = *req.DailyReminders
	}
	user.UpdatedAt = util.NowISO()

	if err := h.db.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update profile")
		return
	}
	util.Success(c, userProfile(user))
}

// ChangePassword verifies the current password before setting a new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "New password must be at least 8 characters")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password")
		return
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = util.NowISO()

	if err := h.db.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to change password")
		return
	}
	util.Success(c, util.Response{"message": "Password changed"})
}

// ForgotPassword creates a reset token and mails the link. The response is
// the same whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email is required")
		return
	}

	neutral := util.Response{"message": "If the email exists, a reset link has been sent"}

	var user models.User
	if err := h.db.First(&user, "email = ?", req.Email).Error; err != nil {
		util.Success(c, neutral)
		return
	}

	token, err := util.RandomToken(32)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create reset token")
		return
	}

	reset := models.PasswordReset{
		ID:        newID(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL).Format(time.RFC3339),
		CreatedAt: util.NowISO(),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create reset token")
		return
	}

	if h.email.Enabled() {
		// Mail failures are not reported to the caller.
		_ = h.email.SendPasswordReset(user.Email, token)
	}

	util.Success(c, neutral)
}

// ResetPassword consumes a reset token and sets a new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Token and a password of at least 8 characters are required")
		return
	}

	var reset models.PasswordReset
	if err := h.db.First(&reset, "token = ?", req.Token).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid or expired reset token")
		return
	}

	expires, err := time.Parse(time.RFC3339, reset.ExpiresAt)
	if reset.Used || err != nil || time.Now().UTC().After(expires) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid or expired reset token")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Updates(map[string]interface{}{
				"password_hash": string(hash),
				"updated_at":    util.NowISO(),
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.PasswordReset{}).Where("id = ?", reset.ID).
			Update("used", true).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to reset password")
		return
	}

	util.Success(c, util.Response{"message": "Password has been reset"})
}

// TestEmail sends a test message to the authenticated user.
func (h *AuthHandler) TestEmail(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	if !h.email.Enabled() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email is not configured on this server")
		return
	}
	if err := h.email.SendTest(user.Email); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to send test email")
		return
	}
	util.Success(c, util.Response{"message": "Test email sent to " + user.Email})
}
