package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/repository"
)

// ErrCommunityNotFound 社区页访问了不存在的社区
var ErrCommunityNotFound = errors.New("community not found")

// InitialLoader 生成首屏（第 1 页）数据，作为增量加载的种子
type InitialLoader struct {
	feeds    FeedService
	subs     repository.SubredditRepository
	pageSize int
}

func NewInitialLoader(feeds FeedService, subs repository.SubredditRepository, pageSize int) *InitialLoader {
	return &InitialLoader{feeds: feeds, subs: subs, pageSize: pageSize}
}

// PageSize 首屏与后续增量请求共用的 limit
func (l *InitialLoader) PageSize() int { return l.pageSize }

// Home 首页：已登录走关注的社区，匿名返回全站（匿名不是错误）
func (l *InitialLoader) Home(ctx context.Context, viewer feed.Viewer) (*feed.Seed, error) {
	page, err := l.feeds.Resolve(ctx, viewer, feed.Filter{}, l.firstPage())
	if err != nil {
		return nil, err
	}
	return l.seed(page, viewer, nil), nil
}

// Community 社区页：显式社区过滤，优先于关注列表
func (l *InitialLoader) Community(ctx context.Context, viewer feed.Viewer, name string) (*feed.Seed, error) {
	filter := feed.Filter{CommunityName: &name}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if _, err := l.subs.GetByName(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, feed.StoreError("get community", err)
	}

	page, err := l.feeds.Resolve(ctx, viewer, filter, l.firstPage())
	if err != nil {
		return nil, err
	}
	return l.seed(page, viewer, &name), nil
}

func (l *InitialLoader) firstPage() feed.PageRequest {
	return feed.Params{Limit: l.pageSize, Page: feed.FirstPage}.PageRequest()
}

func (l *InitialLoader) seed(page *feed.Page, viewer feed.Viewer, name *string) *feed.Seed {
	return &feed.Seed{
		Page:          page,
		Items:         feed.Render(page.Posts, viewer),
		SubredditName: name,
		NextPage:      page.Number() + 1,
	}
}
