package feedclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/model"
)

func posts(prefix string, n int) []*model.Post {
	out := make([]*model.Post, n)
	for i := range out {
		out[i] = &model.Post{ID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func ids(ps []*model.Post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// scripted 按页号返回预设结果，并记录每次请求
type scripted struct {
	mu     sync.Mutex
	calls  []feed.Params
	pages  map[int][]*model.Post
	errs   map[int][]error
	gate   chan struct{}
	called chan struct{}
}

func newScripted() *scripted {
	return &scripted{pages: map[int][]*model.Post{}, errs: map[int][]error{}}
}

func (s *scripted) Fetch(ctx context.Context, p feed.Params) ([]*model.Post, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	var err error
	if q := s.errs[p.Page]; len(q) > 0 {
		err, s.errs[p.Page] = q[0], q[1:]
	}
	gate, called := s.gate, s.called
	s.mu.Unlock()

	if called != nil {
		called <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return s.pages[p.Page], nil
}

func (s *scripted) pagesRequested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Page
	}
	return out
}

func TestLoader_AppendsPagesInOrder(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 2)
	f.pages[3] = posts("p3", 1)

	l := NewLoader(f, posts("p1", 2), 2)
	assert.Equal(t, 2, l.NextPage())
	assert.Equal(t, StateIdle, l.State())

	require.NoError(t, l.FetchNext(context.Background()))
	assert.Equal(t, 3, l.NextPage())
	require.NoError(t, l.FetchNext(context.Background()))

	assert.Equal(t, []string{"p1-0", "p1-1", "p2-0", "p2-1", "p3-0"}, ids(l.Posts()))
	assert.Equal(t, StateExhausted, l.State())
	assert.Equal(t, []int{2, 3}, f.pagesRequested())

	assert.ErrorIs(t, l.FetchNext(context.Background()), ErrExhausted)
	assert.Len(t, f.pagesRequested(), 2)
}

func TestLoader_FullLastPageCostsOneEmptyRequest(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 2)

	l := NewLoader(f, posts("p1", 2), 2)
	require.NoError(t, l.FetchNext(context.Background()))
	assert.Equal(t, StateIdle, l.State())

	require.NoError(t, l.FetchNext(context.Background()))
	assert.Equal(t, StateExhausted, l.State())
	assert.Equal(t, []int{2, 3}, f.pagesRequested())
	assert.Equal(t, 4, l.Len())
}

func TestLoader_ShortSeedIsExhausted(t *testing.T) {
	f := newScripted()
	l := NewLoader(f, posts("p1", 1), 2)
	assert.Equal(t, StateExhausted, l.State())
	assert.False(t, l.LastItemVisible(context.Background()))

	empty := NewLoader(f, nil, 2)
	assert.ErrorIs(t, empty.FetchNext(context.Background()), ErrExhausted)
	assert.Empty(t, f.pagesRequested())
}

func TestLoader_FailedPageIsRetried(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 2)
	f.errs[2] = []error{fmt.Errorf("%w: connection refused", ErrNetwork)}

	var snaps []Snapshot
	l := NewLoader(f, posts("p1", 2), 2, WithOnChange(func(s Snapshot) { snaps = append(snaps, s) }))

	err := l.FetchNext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, Retryable(err))
	assert.ErrorIs(t, l.Err(), ErrNetwork)
	assert.Equal(t, 2, l.Len())
	assert.False(t, l.Fetching())
	assert.Equal(t, StateIdle, l.State())
	assert.Equal(t, 2, l.NextPage())

	require.NoError(t, l.FetchNext(context.Background()))
	assert.NoError(t, l.Err())
	assert.Equal(t, []int{2, 2}, f.pagesRequested())
	assert.Equal(t, []string{"p1-0", "p1-1", "p2-0", "p2-1"}, ids(l.Posts()))

	require.Len(t, snaps, 4)
	assert.Equal(t, StateFetching, snaps[0].State)
	assert.Equal(t, StateIdle, snaps[1].State)
	assert.Error(t, snaps[1].Err)
	assert.Equal(t, 4, snaps[3].Len)
}

func TestLoader_TriggerWhileFetchingIsIgnored(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 2)
	f.gate = make(chan struct{})
	f.called = make(chan struct{}, 4)

	l := NewLoader(f, posts("p1", 2), 2)
	ctx := context.Background()

	require.True(t, l.LastItemVisible(ctx))
	<-f.called
	assert.True(t, l.Fetching())

	assert.False(t, l.LastItemVisible(ctx))
	assert.ErrorIs(t, l.FetchNext(ctx), ErrFetchInFlight)

	close(f.gate)
	l.Wait()

	assert.Equal(t, []int{2}, f.pagesRequested())
	assert.False(t, l.Fetching())
	assert.Equal(t, 4, l.Len())
}

func TestLoader_VisibleOnlyTriggersOnLastItem(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 1)
	l := NewLoader(f, posts("p1", 2), 2)
	ctx := context.Background()

	assert.False(t, l.Visible(ctx, 0))
	assert.True(t, l.Visible(ctx, 1))
	l.Wait()
	assert.Equal(t, 3, l.Len())
	assert.False(t, l.Visible(ctx, 2))
}

func TestLoader_CloseDiscardsLateResult(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 2)
	f.gate = make(chan struct{})
	f.called = make(chan struct{}, 1)

	changes := 0
	var errs []error
	l := NewLoader(f, posts("p1", 2), 2,
		WithOnChange(func(Snapshot) { changes++ }),
		WithOnError(func(_ int, err error) { errs = append(errs, err) }),
	)

	require.True(t, l.LastItemVisible(context.Background()))
	<-f.called
	l.Close()
	l.Wait()

	assert.Equal(t, 1, changes)
	assert.Empty(t, errs)
	assert.Equal(t, 2, l.Len())
	assert.False(t, l.Fetching())
	assert.ErrorIs(t, l.FetchNext(context.Background()), ErrClosed)
}

func TestLoader_FetchTimeout(t *testing.T) {
	f := newScripted()
	f.gate = make(chan struct{})

	var mu sync.Mutex
	var failed []int
	l := NewLoader(f, posts("p1", 2), 2,
		WithFetchTimeout(20*time.Millisecond),
		WithOnError(func(page int, err error) {
			mu.Lock()
			failed = append(failed, page)
			mu.Unlock()
			assert.True(t, errors.Is(err, context.DeadlineExceeded))
		}),
	)

	require.True(t, l.LastItemVisible(context.Background()))
	l.Wait()

	mu.Lock()
	assert.Equal(t, []int{2}, failed)
	mu.Unlock()
	assert.Equal(t, StateIdle, l.State())
	assert.Equal(t, 2, l.NextPage())
}

func TestLoader_ForwardsLimitAndCommunity(t *testing.T) {
	f := newScripted()
	f.pages[2] = posts("p2", 0)
	name := "golang"
	seed := &feed.Seed{Page: &feed.Page{Posts: posts("p1", 3), Limit: 3}, SubredditName: &name, NextPage: 2}

	l := NewLoaderFromSeed(f, seed)
	require.NoError(t, l.FetchNext(context.Background()))

	require.Len(t, f.calls, 1)
	assert.Equal(t, 3, f.calls[0].Limit)
	require.NotNil(t, f.calls[0].SubredditName)
	assert.Equal(t, "golang", *f.calls[0].SubredditName)
	assert.Equal(t, StateExhausted, l.State())
}

func TestLoader_ItemsUseCurrentViewer(t *testing.T) {
	p := &model.Post{ID: "p", Votes: []model.Vote{
		{UserID: "alice", PostID: "p", Type: model.VoteUp},
		{UserID: "bob", PostID: "p", Type: model.VoteUp},
	}}
	l := NewLoader(newScripted(), []*model.Post{p}, 2)

	anon := l.Items(feed.AnonymousViewer)
	require.Len(t, anon, 1)
	assert.Equal(t, 2, anon[0].Score.Net)
	assert.Nil(t, anon[0].Score.ViewerVote)

	alice := l.Items(feed.Viewer{ID: "alice"})
	require.NotNil(t, alice[0].Score.ViewerVote)
	assert.Equal(t, model.VoteUp, alice[0].Score.ViewerVote.Type)
}
