package feed

import "fmt"

// ScopeKind 一页帖子的取数范围
type ScopeKind int

const (
	// ScopeGlobal 全站
	ScopeGlobal ScopeKind = iota
	// ScopeExplicit 指定社区
	ScopeExplicit
	// ScopeFollowed 浏览者关注的社区
	ScopeFollowed
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeExplicit:
		return "explicit"
	case ScopeFollowed:
		return "followed"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

// Scope 判定后的取数范围
type Scope struct {
	Kind          ScopeKind
	CommunityName string   // ScopeExplicit
	CommunityIDs  []string // ScopeFollowed，可能为空
}

func Global() Scope { return Scope{Kind: ScopeGlobal} }

func Explicit(name string) Scope { return Scope{Kind: ScopeExplicit, CommunityName: name} }

func Followed(ids []string) Scope { return Scope{Kind: ScopeFollowed, CommunityIDs: ids} }

// Empty 关注范围但没有关注任何社区，不会匹配任何帖子
func (s Scope) Empty() bool { return s.Kind == ScopeFollowed && len(s.CommunityIDs) == 0 }

// FollowedLookup 查询浏览者关注的社区 id
type FollowedLookup func() ([]string, error)

// DecideScope 优先级：显式社区 > 关注列表 > 全站。
// 只有已登录且未指定社区时才调用 lookup
func DecideScope(filter Filter, viewer Viewer, lookup FollowedLookup) (Scope, error) {
	if filter.CommunityName != nil {
		return Explicit(*filter.CommunityName), nil
	}
	if viewer.Anonymous() {
		return Global(), nil
	}
	ids, err := lookup()
	if err != nil {
		return Scope{}, err
	}
	return Followed(ids), nil
}
