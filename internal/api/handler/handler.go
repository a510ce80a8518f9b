package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/community-feed/internal/service"
)

// Handler 聚合 HTTP 处理器依赖
type Handler struct {
	feedService   service.FeedService
	initialLoader *service.InitialLoader
	db            *gorm.DB
}

func NewHandler(feedService service.FeedService, initialLoader *service.InitialLoader, db *gorm.DB) *Handler {
	return &Handler{feedService: feedService, initialLoader: initialLoader, db: db}
}

// Health 存活检查，顺带 ping 数据库
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
