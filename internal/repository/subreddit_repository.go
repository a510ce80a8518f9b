package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/community-feed/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

type SubredditRepository interface {
	Create(ctx context.Context, s *model.Subreddit) error
	GetByName(ctx context.Context, name string) (*model.Subreddit, error)
}

type subredditRepository struct{ db *gorm.DB }

func NewSubredditRepository(db *gorm.DB) SubredditRepository { return &subredditRepository{db: db} }

func (r *subredditRepository) Create(ctx context.Context, s *model.Subreddit) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

func (r *subredditRepository) GetByName(ctx context.Context, name string) (*model.Subreddit, error) {
	var s model.Subreddit
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
