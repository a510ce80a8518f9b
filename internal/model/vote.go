package model

// VoteType 投票方向
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// Value 返回该方向对净分的贡献
func (t VoteType) Value() int {
	switch t {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	default:
		return 0
	}
}

// Vote 投票，(user_id, post_id) 唯一：同一用户再次投票是替换而非追加
type Vote struct {
	UserID string   `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	PostID string   `json:"post_id" gorm:"primaryKey;type:varchar(36);index:idx_vote_post"`
	Type   VoteType `json:"type" gorm:"type:varchar(8);not null"`
}

func (Vote) TableName() string { return "votes" }
