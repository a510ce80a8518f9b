package response

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/community-feed/pkg/logger"
)

// Response 统一错误 / 包装响应体
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Raw 200，直接输出 data（增量加载接口约定返回裸数组）
func Raw(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func NotFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

// Unprocessable 422，请求参数格式错误
func Unprocessable(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{Code: http.StatusUnprocessableEntity, Message: msg})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: "too many requests"})
}

// InternalError 500，对外只返回通用文案，细节写日志并上报 sentry
func InternalError(c *gin.Context, err error, msg ...string) {
	text := "internal server error"
	if len(msg) > 0 {
		text = msg[0]
	}
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: text})
}
