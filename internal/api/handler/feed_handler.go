package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/community-feed/internal/api/middleware"
	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/service"
	"github.com/d60-Lab/community-feed/pkg/response"
)

const (
	msgInvalidParams = "Invalid request data passed"
	msgFetchFailed   = "Could not fetch more posts"
)

// ListPosts 增量加载的下一页
// @Summary 分页获取帖子
// @Description 指定 subredditName 时只看该社区；否则已登录看关注的社区，匿名看全站。按创建时间倒序。
// @Tags 信息流
// @Produce json
// @Param limit query int true "每页数量"
// @Param page query int true "页码，从 1 开始"
// @Param subredditName query string false "社区名"
// @Success 200 {array} model.Post
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	params, err := feed.ParseParams(c.Request.URL.Query())
	if err != nil {
		response.Unprocessable(c, msgInvalidParams)
		return
	}

	page, err := h.feedService.Resolve(c.Request.Context(), middleware.ViewerFrom(c), params.Filter(), params.PageRequest())
	if err != nil {
		h.feedError(c, err, msgFetchFailed)
		return
	}
	response.Raw(c, page.Posts)
}

// HomeFeed 首页首屏
// @Summary 首页首屏
// @Tags 信息流
// @Produce json
// @Success 200 {object} feed.Seed
// @Failure 500 {object} response.Response
// @Router /api/feed [get]
func (h *Handler) HomeFeed(c *gin.Context) {
	seed, err := h.initialLoader.Home(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		h.feedError(c, err, msgFetchFailed)
		return
	}
	response.Raw(c, seed)
}

// CommunityFeed 社区页首屏
// @Summary 社区页首屏
// @Tags 信息流
// @Produce json
// @Param name path string true "社区名"
// @Success 200 {object} feed.Seed
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/r/{name}/feed [get]
func (h *Handler) CommunityFeed(c *gin.Context) {
	seed, err := h.initialLoader.Community(c.Request.Context(), middleware.ViewerFrom(c), c.Param("name"))
	if err != nil {
		h.feedError(c, err, msgFetchFailed)
		return
	}
	response.Raw(c, seed)
}

// feedError 按错误种类而不是文案映射状态码
func (h *Handler) feedError(c *gin.Context, err error, msg string) {
	switch {
	case service.IsValidation(err):
		response.Unprocessable(c, msgInvalidParams)
	case errors.Is(err, service.ErrCommunityNotFound):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c, err, msg)
	}
}
