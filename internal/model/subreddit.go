package model

import "time"

// Subreddit 社区，name 全局唯一
type Subreddit struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatorID *string   `json:"creator_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subreddit) TableName() string { return "subreddits" }
