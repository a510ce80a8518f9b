package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/community-feed/internal/model"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, userID, subredditID string) error
	Delete(ctx context.Context, userID, subredditID string) error
	// ListSubredditIDs 返回用户关注的全部社区 ID（每次请求实时读取，不缓存）
	ListSubredditIDs(ctx context.Context, userID string) ([]string, error)
	ListSubscriptions(ctx context.Context, userID string, offset, limit int) ([]*model.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, userID, subredditID string) error {
	s := &model.Subscription{UserID: userID, SubredditID: subredditID}
	// 幂等：重复关注不报错
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, userID, subredditID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND subreddit_id = ?", userID, subredditID).
		Delete(&model.Subscription{}).Error
}

func (r *subscriptionRepository) ListSubredditIDs(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Order("subreddit_id").
		Pluck("subreddit_id", &ids).Error
	return ids, err
}

func (r *subscriptionRepository) ListSubscriptions(ctx context.Context, userID string, offset, limit int) ([]*model.Subscription, error) {
	var res []*model.Subscription
	err := r.db.WithContext(ctx).
		Preload("Subreddit").
		Where("user_id = ?", userID).
		Order("subreddit_id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
