package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/model"
	"github.com/d60-Lab/community-feed/internal/repository"
	"github.com/d60-Lab/community-feed/internal/testsupport"
	"github.com/d60-Lab/community-feed/pkg/database"
)

func newFeedService(db *gorm.DB) FeedService {
	return NewFeedService(repository.NewPostRepository(db), repository.NewSubscriptionRepository(db), 50)
}

func page(limit, number int) feed.PageRequest {
	return feed.Params{Limit: limit, Page: number}.PageRequest()
}

func TestResolve_AnonymousGlobalPagination(t *testing.T) {
	db := testsupport.OpenDB(t)
	fx := testsupport.NewFixture(t, db)
	svc := newFeedService(db)
	ctx := context.Background()

	u := fx.User("u")
	communities := []*model.Subreddit{fx.Community("a"), fx.Community("b"), fx.Community("c")}
	var want []string
	for i := 0; i < 15; i++ {
		p := fx.Post(u, communities[i%3], i)
		want = append([]string{p.ID}, want...) // 最新的在前
	}

	first, err := svc.Resolve(ctx, feed.AnonymousViewer, feed.Filter{}, page(10, 1))
	require.NoError(t, err)
	assert.Equal(t, want[:10], testsupport.IDs(first.Posts))
	assert.Equal(t, feed.ScopeGlobal, first.Scope.Kind)
	for i := 1; i < len(first.Posts); i++ {
		assert.True(t, first.Posts[i-1].CreatedAt.After(first.Posts[i].CreatedAt))
	}

	second, err := svc.Resolve(ctx, feed.AnonymousViewer, feed.Filter{}, page(10, 2))
	require.NoError(t, err)
	assert.Equal(t, want[10:], testsupport.IDs(second.Posts))
	assert.True(t, second.Short())

	seen := map[string]bool{}
	for _, id := range append(testsupport.IDs(first.Posts), testsupport.IDs(second.Posts)...) {
		assert.False(t, seen[id], "post %s appears on two pages", id)
		seen[id] = true
	}
	assert.Len(t, seen, 15)
}

func TestResolve_ConsecutivePagesNoOverlapNoGap(t *testing.T) {
	db := testsupport.OpenDB(t)
	fx := testsupport.NewFixture(t, db)
	svc := newFeedService(db)
	ctx := context.Background()

	u := fx.User("u")
	s := fx.Community("ties")
	// 大量相同时间戳
	for i := 0; i < 23; i++ {
		fx.Post(u, s, i/4)
	}
	all, err := svc.Resolve(ctx, feed.AnonymousViewer, feed.Filter{}, page(50, 1))
	require.NoError(t, err)
	require.Len(t, all.Posts, 23)

	for _, limit := range []int{1, 3, 4, 7} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			var got []string
			for n := 1; ; n++ {
				p, err := svc.Resolve(ctx, feed.AnonymousViewer, feed.Filter{}, page(limit, n))
				require.NoError(t, err)
				got = append(got, testsupport.IDs(p.Posts)...)
				if p.Short() {
					break
				}
			}
			assert.Equal(t, testsupport.IDs(all.Posts), got)
		})
	}
}

func TestResolve_FollowedCommunitiesOnly(t *testing.T) {
	db := testsupport.OpenDB(t)
	fx := testsupport.NewFixture(t, db)
	svc := newFeedService(db)
	ctx := context.Background()

	viewer := fx.User("viewer")
	a, b, c := fx.Community("a"), fx.Community("b"), fx.Community("c")
	fx.Follow(viewer, a)
	fx.Follow(viewer, b)
	for i := 0; i < 9; i++ {
		fx.Post(viewer, []*model.Subreddit{a, b, c}[i%3], i)
	}

	p, err := svc.Resolve(ctx, feed.Viewer{ID: viewer.ID}, feed.Filter{}, page(50, 1))
	require.NoError(t, err)
	assert.Equal(t, feed.ScopeFollowed, p.Scope.Kind)
	require.Len(t, p.Posts, 6)
	for _, post := range p.Posts {
		assert.Contains(t, []string{a.ID, b.ID}, post.SubredditID)
	}
}

func TestResolve_FollowsNothing(t *testing.T) {
	db := testsupport.OpenDB(t)
	fx := testsupport.NewFixture(t, db)
	svc := newFeedService(db)

	u := fx.User("lonely")
	fx.Post(u, fx.Community("a"), 1)

	p, err := svc.Resolve(context.Background(), feed.Viewer{ID: u.ID}, feed.Filter{}, page(10, 1))
	require.NoError(t, err)
	assert.Empty(t, p.Posts)
}

func TestResolve_ExplicitFilterWinsOverFollowed(t *testing.T) {
	db := testsupport.OpenDB(t)
	fx := testsupport.NewFixture(t, db)
	svc := newFeedService(db)

	viewer := fx.User("viewer")
	followed, other := fx.Community("followed"), fx.Community("other")
	fx.Follow(viewer, followed)
	fx.Post(viewer, followed, 1)
	want := fx.Post(viewer, other, 2)

	name := "other"
	p, err := svc.Resolve(context.Background(), feed.Viewer{ID: viewer.ID}, feed.Filter{CommunityName: &name}, page(10, 1))
	require.NoError(t, err)
	assert.Equal(t, feed.ScopeExplicit, p.Scope.Kind)
	assert.Equal(t, []string{want.ID}, testsupport.IDs(p.Posts))
}

func TestResolve_ValidationErrors(t *testing.T) {
	db := testsupport.OpenDB(t)
	svc := newFeedService(db)
	empty := ""

	tests := []struct {
		name   string
		filter feed.Filter
		req    feed.PageRequest
	}{
		{"zero limit", feed.Filter{}, feed.PageRequest{Limit: 0, Index: 0}},
		{"limit over max", feed.Filter{}, feed.PageRequest{Limit: 51, Index: 0}},
		{"negative index", feed.Filter{}, feed.PageRequest{Limit: 10, Index: -1}},
		{"empty community", feed.Filter{CommunityName: &empty}, feed.PageRequest{Limit: 10, Index: 0}},
		{"offset overflow", feed.Filter{}, feed.PageRequest{Limit: 10, Index: math.MaxInt / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), feed.AnonymousViewer, tt.filter, tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.False(t, IsStoreUnavailable(err))
		})
	}
}

func TestResolve_StoreUnavailable(t *testing.T) {
	db := testsupport.OpenDB(t)
	svc := newFeedService(db)
	require.NoError(t, database.Close(db))

	_, err := svc.Resolve(context.Background(), feed.AnonymousViewer, feed.Filter{}, page(10, 1))
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
	assert.False(t, IsValidation(err))

	_, err = svc.Resolve(context.Background(), feed.Viewer{ID: "u"}, feed.Filter{}, page(10, 1))
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}

type failingSubs struct {
	repository.SubscriptionRepository
	calls int
}

func (f *failingSubs) ListSubredditIDs(context.Context, string) ([]string, error) {
	f.calls++
	return nil, errors.New("connection reset")
}

func TestResolve_SubscriptionLookupOnlyWhenNeeded(t *testing.T) {
	db := testsupport.OpenDB(t)
	subs := &failingSubs{}
	svc := NewFeedService(repository.NewPostRepository(db), subs, 0)
	name := "a"

	_, err := svc.Resolve(context.Background(), feed.AnonymousViewer, feed.Filter{}, page(10, 1))
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), feed.Viewer{ID: "u"}, feed.Filter{CommunityName: &name}, page(10, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, subs.calls)

	_, err = svc.Resolve(context.Background(), feed.Viewer{ID: "u"}, feed.Filter{}, page(10, 1))
	assert.True(t, IsStoreUnavailable(err))
	assert.Equal(t, 1, subs.calls)
}
