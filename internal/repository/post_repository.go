package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/model"
)

// PostRepository 帖子仓储
type PostRepository interface {
	// Create 批量写入帖子（仅种子数据 / 基准使用，feed 本身只读）
	Create(ctx context.Context, posts []*model.Post) error
	// ListPage 按 scope 过滤，created_at DESC, id DESC 排序后分页
	ListPage(ctx context.Context, scope feed.Scope, offset, limit int) ([]*model.Post, error)
	Count(ctx context.Context, scope feed.Scope) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(posts, 500).Error
}

// scoped 把 scope 翻译成 where 条件
func (r *postRepository) scoped(ctx context.Context, scope feed.Scope) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	switch scope.Kind {
	case feed.ScopeGlobal:
		return q, nil
	case feed.ScopeExplicit:
		sub := r.db.Model(&model.Subreddit{}).Select("id").Where("name = ?", scope.CommunityName)
		return q.Where("posts.subreddit_id IN (?)", sub), nil
	case feed.ScopeFollowed:
		return q.Where("posts.subreddit_id IN ?", scope.CommunityIDs), nil
	default:
		return nil, fmt.Errorf("unknown scope %v", scope.Kind)
	}
}

func (r *postRepository) ListPage(ctx context.Context, scope feed.Scope, offset, limit int) ([]*model.Post, error) {
	posts := make([]*model.Post, 0, limit)
	if scope.Empty() {
		return posts, nil
	}

	q, err := r.scoped(ctx, scope)
	if err != nil {
		return nil, err
	}
	err = q.
		Preload("Author").
		Preload("Subreddit").
		Preload("Votes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			// feed 只需要数量，不拉正文
			return db.Select("id", "post_id", "author_id", "created_at")
		}).
		// id 作为第二排序键，保证相同时间戳下翻页稳定
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		p.CommentCount = len(p.Comments)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, scope feed.Scope) (int64, error) {
	if scope.Empty() {
		return 0, nil
	}
	q, err := r.scoped(ctx, scope)
	if err != nil {
		return 0, err
	}
	var n int64
	err = q.Count(&n).Error
	return n, err
}
