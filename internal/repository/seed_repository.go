package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/community-feed/internal/model"
)

// SeedRepository 写入种子数据（用户 / 投票 / 评论），供基准与测试使用
type SeedRepository interface {
	CreateUsers(ctx context.Context, users []*model.User) error
	UpsertVote(ctx context.Context, v *model.Vote) error
	CreateComments(ctx context.Context, comments []*model.Comment) error
}

type seedRepository struct{ db *gorm.DB }

func NewSeedRepository(db *gorm.DB) SeedRepository { return &seedRepository{db: db} }

func (r *seedRepository) CreateUsers(ctx context.Context, users []*model.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(users, 500).Error
}

// UpsertVote 同一 (user, post) 重复投票覆盖方向
func (r *seedRepository) UpsertVote(ctx context.Context, v *model.Vote) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type"}),
	}).Create(v).Error
}

func (r *seedRepository) CreateComments(ctx context.Context, comments []*model.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(comments, 500).Error
}
