package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/repository"
	"github.com/d60-Lab/community-feed/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/community-feed/internal/service")

// FeedService 按浏览者与社区过滤解析一页帖子
type FeedService interface {
	Resolve(ctx context.Context, viewer feed.Viewer, filter feed.Filter, req feed.PageRequest) (*feed.Page, error)
}

type feedService struct {
	postRepo repository.PostRepository
	subRepo  repository.SubscriptionRepository
	maxLimit int
}

// NewFeedService maxLimit<=0 表示不限制单页大小
func NewFeedService(postRepo repository.PostRepository, subRepo repository.SubscriptionRepository, maxLimit int) FeedService {
	return &feedService{postRepo: postRepo, subRepo: subRepo, maxLimit: maxLimit}
}

func (s *feedService) Resolve(ctx context.Context, viewer feed.Viewer, filter feed.Filter, req feed.PageRequest) (*feed.Page, error) {
	ctx, span := tracer.Start(ctx, "feed.Resolve")
	defer span.End()

	if err := req.Validate(s.maxLimit); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	// 关注列表每次请求实时读取
	scope, err := feed.DecideScope(filter, viewer, func() ([]string, error) {
		return s.subRepo.ListSubredditIDs(ctx, viewer.ID)
	})
	if err != nil {
		err = feed.StoreError("list subscriptions", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store unavailable")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("feed.scope", scope.Kind.String()),
		attribute.Int("feed.limit", req.Limit),
		attribute.Int("feed.index", req.Index),
		attribute.Bool("feed.anonymous", viewer.Anonymous()),
	)

	posts, err := s.postRepo.ListPage(ctx, scope, req.Offset(), req.Limit)
	if err != nil {
		err = feed.StoreError("list posts", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store unavailable")
		return nil, err
	}

	logger.Debug("feed page resolved",
		zap.String("scope", scope.Kind.String()),
		zap.Int("limit", req.Limit),
		zap.Int("index", req.Index),
		zap.Int("posts", len(posts)),
	)
	return &feed.Page{Posts: posts, Limit: req.Limit, Index: req.Index, Scope: scope}, nil
}

// IsValidation 便于上层按错误种类映射状态码
func IsValidation(err error) bool { return errors.Is(err, feed.ErrValidation) }

// IsStoreUnavailable 存储不可用
func IsStoreUnavailable(err error) bool { return errors.Is(err, feed.ErrStoreUnavailable) }
