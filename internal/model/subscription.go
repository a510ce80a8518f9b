package model

// Subscription 用户关注社区（User 关注 Subreddit）
type Subscription struct {
	// 复合主键 (user_id, subreddit_id)，避免重复关注
	UserID      string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	SubredditID string    `json:"subreddit_id" gorm:"primaryKey;type:varchar(36);index:idx_subscription_subreddit"`
	Subreddit   Subreddit `json:"subreddit,omitempty" gorm:"foreignKey:SubredditID"`
}

func (Subscription) TableName() string { return "subscriptions" }
