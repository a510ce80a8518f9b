package model

import "time"

// Comment 评论（feed 只消费数量）
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Text      string    `json:"text,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(36)"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);index:idx_comment_post;not null"`
	ReplyToID *string   `json:"reply_to_id,omitempty" gorm:"type:varchar(36)"`
}

func (Comment) TableName() string { return "comments" }
