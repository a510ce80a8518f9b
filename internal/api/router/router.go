package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/community-feed/config"
	_ "github.com/d60-Lab/community-feed/docs"
	"github.com/d60-Lab/community-feed/internal/api/handler"
	"github.com/d60-Lab/community-feed/internal/api/middleware"
	"github.com/d60-Lab/community-feed/internal/auth"
)

// Options 构建路由所需依赖
type Options struct {
	Config   *config.Config
	Handler  *handler.Handler
	Provider auth.Provider
	Sentry   bool
}

// New 组装 gin 引擎
func New(opts Options) *gin.Engine {
	cfg := opts.Config
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Viewer(opts.Provider))
	r.Use(middleware.Logger())

	h := opts.Handler
	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(middleware.Deadline(cfg.Server.RequestTimeout))
	if cfg.Server.RateLimit > 0 {
		api.Use(middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).Middleware())
	}
	{
		api.GET("/posts", h.ListPosts)
		api.GET("/feed", h.HomeFeed)
		api.GET("/r/:name/feed", h.CommunityFeed)
	}
	return r
}
