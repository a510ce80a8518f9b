package model

import "time"

// Post 帖子，属于唯一的作者与社区
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36);index:idx_post_created,priority:2"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Content     *string   `json:"content,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_post_created,priority:1"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    string    `json:"author_id" gorm:"type:varchar(36);index:idx_post_author;not null"`
	Author      User      `json:"author" gorm:"foreignKey:AuthorID"`
	SubredditID string    `json:"subreddit_id" gorm:"type:varchar(36);index:idx_post_subreddit;not null"`
	Subreddit   Subreddit `json:"subreddit" gorm:"foreignKey:SubredditID"`
	Votes       []Vote    `json:"votes" gorm:"foreignKey:PostID"`
	Comments    []Comment `json:"comments" gorm:"foreignKey:PostID"`

	// CommentCount 由查询填充，不落库
	CommentCount int `json:"comment_count" gorm:"-"`
}

func (Post) TableName() string { return "posts" }
