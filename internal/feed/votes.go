package feed

import "github.com/d60-Lab/community-feed/internal/model"

// Score 帖子相对某个浏览者的投票状态
type Score struct {
	Net        int         `json:"net_score"`
	ViewerVote *model.Vote `json:"viewer_vote,omitempty"`
}

// Tally 汇总净票数并找出浏览者自己的票。存储保证 (post, user) 至多一票，
// 若出现多条取第一条
func Tally(votes []model.Vote, viewer Viewer) Score {
	var s Score
	for i := range votes {
		s.Net += votes[i].Type.Value()
		if s.ViewerVote == nil && !viewer.Anonymous() && votes[i].UserID == viewer.ID {
			v := votes[i]
			s.ViewerVote = &v
		}
	}
	return s
}
