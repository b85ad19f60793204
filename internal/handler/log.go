package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
	"github.com/Samsoniteyd/newtailor/internal/middleware"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/util"
)

// LogHandler lists the caller's audit trail.
type LogHandler struct {
	DB *gorm.DB
}

func NewLogHandler(db *gorm.DB) *LogHandler {
	return &LogHandler{DB: db}
}

// ListLogs returns the caller's audit entries, newest first, paginated.
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if size <= 0 || size > 200 {
		size = 50
	}

	base := h.DB.Model(&models.AuditLog{}).Where("user_id = ?", user.ID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		util.Fail(c, apperr.Server("count logs", err))
		return
	}

	var logs []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&logs).Error; err != nil {
		util.Fail(c, apperr.Server("list logs", err))
		return
	}

	util.Success(c, http.StatusOK, util.Response{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}
