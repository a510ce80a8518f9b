package feed

import "github.com/d60-Lab/community-feed/internal/model"

// Page 一页帖子，新的在前；只在请求内存在，不落库
type Page struct {
	Posts []*model.Post `json:"posts"`
	Limit int           `json:"limit"`
	Index int           `json:"index"`
	Scope Scope         `json:"-"`
}

// Number 客户端使用的页码（从 1 开始）
func (p *Page) Number() int { return p.Index + FirstPage }

// Short 不满一页，这是唯一的“到底了”信号
func (p *Page) Short() bool { return len(p.Posts) < p.Limit }

type Item struct {
	Post         *model.Post `json:"post"`
	Score        Score       `json:"score"`
	CommentCount int         `json:"comment_count"`
}

// Render 以给定浏览者对每个帖子做投票汇总
func Render(posts []*model.Post, viewer Viewer) []Item {
	items := make([]Item, len(posts))
	for i, p := range posts {
		items[i] = Item{Post: p, Score: Tally(p.Votes, viewer), CommentCount: CommentCount(p)}
	}
	return items
}

// CommentCount 优先用统计值，否则数已加载的评论
func CommentCount(p *model.Post) int {
	if p.CommentCount > 0 {
		return p.CommentCount
	}
	return len(p.Comments)
}

// Seed 首屏数据，附带增量加载下一次要请求的页码
type Seed struct {
	Page          *Page   `json:"page"`
	Items         []Item  `json:"items"`
	SubredditName *string `json:"subreddit_name,omitempty"`
	NextPage      int     `json:"next_page"`
}
