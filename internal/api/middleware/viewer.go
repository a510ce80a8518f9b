package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/community-feed/internal/auth"
	"github.com/d60-Lab/community-feed/internal/feed"
)

const viewerKey = "feed.viewer"

// Viewer 解析当前浏览者；失败时降级为匿名，不拦截请求
func Viewer(p auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(viewerKey, auth.Resolve(p, c.Request))
		c.Next()
	}
}

// ViewerFrom 取出 Viewer 中间件写入的浏览者，未挂载时为匿名
func ViewerFrom(c *gin.Context) feed.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(feed.Viewer); ok {
			return viewer
		}
	}
	return feed.AnonymousViewer
}
