package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/service"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OpenAIHandler manages per-user OpenAI settings and AI categorization of
// imported transactions. Keys are stored encrypted and never echoed back.
type OpenAIHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	categorizer *service.Categorizer
}

func NewOpenAIHandler(db *gorm.DB, cfg *config.Config, categorizer *service.Categorizer) *OpenAIHandler {
	return &OpenAIHandler{db: db, cfg: cfg, categorizer: categorizer}
}

func (h *OpenAIHandler) apiKey(user *models.User) (string, error) {
	if user.OpenAIKeyEnc == "" {
		return "", nil
	}
	return util.DecryptString(h.cfg.App.EncryptionKey, user.OpenAIKeyEnc)
}

func (h *OpenAIHandler) Settings(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	model := user.OpenAIModel
	if model == "" {
		model = service.DefaultModel
	}
	util.Success(c, util.Response{
		"has_key":          user.OpenAIKeyEnc != "",
		"model":            model,
		"updated_at":       user.OpenAIUpdatedAt,
		"available_models": service.AvailableModels,
	})
}

func (h *OpenAIHandler) UpdateSettings(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		APIKey *string `json:"api_key"`
		Model  *string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.Model != nil {
		if !service.IsKnownModel(*req.Model) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Unknown model")
			return
		}
		user.OpenAIModel = *req.Model
	}
	if req.APIKey != nil {
		if *req.APIKey == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "API key cannot be empty")
			return
		}
		enc, err := util.EncryptString(h.cfg.App.EncryptionKey, *req.APIKey)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to store API key")
			return
		}
		user.OpenAIKeyEnc = enc
		user.OpenAIUpdatedAt = util.NowISO()
	}
	user.UpdatedAt = util.NowISO()

	if err := h.db.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update settings")
		return
	}
	h.Settings(c)
}

func (h *OpenAIHandler) DeleteSettings(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	user.OpenAIKeyEnc = ""
	user.OpenAIModel = ""
	user.OpenAIUpdatedAt = ""
	user.UpdatedAt = util.NowISO()
	if err := h.db.Save(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to remove settings")
		return
	}
	util.Success(c, util.Response{"message": "OpenAI settings removed"})
}

// Test verifies the stored key against the API.
func (h *OpenAIHandler) Test(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	key, err := h.apiKey(user)
	if err != nil || key == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No API key is configured")
		return
	}
	if err := h.categorizer.TestKey(c.Request.Context(), key, user.OpenAIModel); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "The API key did not work")
		return
	}
	util.Success(c, util.Response{"message": "API key works"})
}

// Categorize assigns finance category names to transaction descriptions,
// typically import preview rows.
func (h *OpenAIHandler) Categorize(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	key, err := h.apiKey(user)
	if err != nil || key == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No API key is configured")
		return
	}

	var req struct {
		ProjectID    string   `json:"project_id" binding:"required"`
		Descriptions []string `json:"descriptions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id and descriptions are required")
		return
	}

	var categories []models.FinanceCategory
	if err := h.db.Where("user_id = ? AND project_id = ?", user.ID, req.ProjectID).
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load categories")
		return
	}
	if len(categories) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Create finance categories first")
		return
	}
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}

	assigned, err := h.categorizer.Categorize(c.Request.Context(), key, user.OpenAIModel,
		req.Descriptions, names)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Categorization failed")
		return
	}
	util.Success(c, util.Response{"assignments": assigned})
}
