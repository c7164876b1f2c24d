package handler

import (
	"net/http"

	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports liveness and database reachability.
func (h *HealthHandler) Check(c *gin.Context) {
	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    util.CodeServerErr,
			"message": "database unavailable",
		})
		return
	}

	util.Success(c, util.Response{
		"status":   "ok",
		"database": dbStatus,
		"version":  Version,
	})
}
