// Package feedclient feed 接口的调用方：HTTP 拉取器，以及随滚动逐页追加的增量加载器。
package feedclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/model"
	"github.com/d60-Lab/community-feed/pkg/logger"
)

// DefaultFetchTimeout 单页拉取超时
const DefaultFetchTimeout = 10 * time.Second

// State 加载器状态
type State int

const (
	StateIdle State = iota
	StateFetching
	// StateExhausted 收到不满一页的结果后进入。没有显式的结束信号，
	// 最后一页恰好满页时要多发一次空请求才会到这里
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching-next"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot 每次状态变化后交给展示层
type Snapshot struct {
	State    State
	Len      int
	NextPage int
	Err      error
}

// Loader 在首屏之后追加页。同一时刻至多一个请求，页码严格递增
type Loader struct {
	fetcher   Fetcher
	limit     int
	community *string
	timeout   time.Duration
	onChange  func(Snapshot)
	onError   func(page int, err error)

	lifetime context.Context
	teardown context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.Mutex
	seed   []*model.Post
	pages  [][]*model.Post
	state  State
	closed bool
	err    error
}

type Option func(*Loader)

func WithCommunity(name string) Option { return func(l *Loader) { l.community = &name } }

// WithFetchTimeout d<=0 时保持 DefaultFetchTimeout
func WithFetchTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithOnChange 每次状态变化后调用，不持锁
func WithOnChange(fn func(Snapshot)) Option { return func(l *Loader) { l.onChange = fn } }

// WithOnError 接收 LastItemVisible 发起的失败请求
func WithOnError(fn func(page int, err error)) Option { return func(l *Loader) { l.onError = fn } }

// NewLoader 从首屏（第 1 页）开始；limit 必须与首屏使用的一致
func NewLoader(fetcher Fetcher, seed []*model.Post, limit int, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		limit:   limit,
		timeout: DefaultFetchTimeout,
		seed:    seed,
	}
	for _, o := range opts {
		o(l)
	}
	l.lifetime, l.teardown = context.WithCancel(context.Background())
	if len(seed) < limit {
		l.state = StateExhausted
	}
	return l
}

// NewLoaderFromSeed 使用服务端首屏带回的 limit 与社区
func NewLoaderFromSeed(fetcher Fetcher, seed *feed.Seed, opts ...Option) *Loader {
	if seed.SubredditName != nil {
		opts = append([]Option{WithCommunity(*seed.SubredditName)}, opts...)
	}
	return NewLoader(fetcher, seed.Page.Posts, seed.Page.Limit, opts...)
}

// nextPage 首屏算第 1 页，每追加一页加一；调用方持有 mu
func (l *Loader) nextPage() int { return feed.FirstPage + 1 + len(l.pages) }

func (l *Loader) snapshot() Snapshot {
	n := len(l.seed)
	for _, p := range l.pages {
		n += len(p)
	}
	return Snapshot{State: l.state, Len: n, NextPage: l.nextPage(), Err: l.err}
}

func (l *Loader) notify(s Snapshot) {
	if l.onChange != nil {
		l.onChange(s)
	}
}

// begin idle -> fetching，返回要请求的页码
func (l *Loader) begin() (int, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0, ErrClosed
	}
	switch l.state {
	case StateFetching:
		l.mu.Unlock()
		return 0, ErrFetchInFlight
	case StateExhausted:
		l.mu.Unlock()
		return 0, ErrExhausted
	}
	l.state = StateFetching
	page := l.nextPage()
	s := l.snapshot()
	l.mu.Unlock()

	l.notify(s)
	return page, nil
}

// finish 写入结果；期间已 Close 则丢弃
func (l *Loader) finish(page int, posts []*model.Post, fetchErr error) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		logger.Debug("discarding page for closed loader", zap.Int("page", page))
		return ErrClosed
	}
	if fetchErr != nil {
		l.state = StateIdle
		l.err = fmt.Errorf("fetch page %d: %w", page, fetchErr)
	} else {
		l.pages = append(l.pages, posts)
		l.err = nil
		if len(posts) < l.limit {
			l.state = StateExhausted
		} else {
			l.state = StateIdle
		}
	}
	err := l.err
	s := l.snapshot()
	l.mu.Unlock()

	l.notify(s)
	return err
}

func (l *Loader) run(ctx context.Context, page int) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	stop := context.AfterFunc(l.lifetime, cancel)
	defer stop()

	params := feed.Params{Limit: l.limit, Page: page, SubredditName: l.community}
	posts, err := l.fetcher.Fetch(ctx, params)
	return l.finish(page, posts, err)
}

// FetchNext 同步拉取下一页。失败时已有内容不变，下次调用重试同一页
func (l *Loader) FetchNext(ctx context.Context) error {
	page, err := l.begin()
	if err != nil {
		return err
	}
	return l.run(ctx, page)
}

// LastItemVisible 可见性触发：空闲时后台拉取并返回 true；
// 已有请求在进行时直接丢弃，不排队
func (l *Loader) LastItemVisible(ctx context.Context) bool {
	page, err := l.begin()
	if err != nil {
		return false
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.run(ctx, page); err != nil && !errors.Is(err, ErrClosed) && l.onError != nil {
			l.onError(page, err)
		}
	}()
	return true
}

// Visible 只有最后一条可见时才触发
func (l *Loader) Visible(ctx context.Context, index int) bool {
	if index != l.Len()-1 {
		return false
	}
	return l.LastItemVisible(ctx)
}

// Wait 等待后台请求返回
func (l *Loader) Wait() { l.wg.Wait() }

// Close 视图销毁，之后到达的结果直接丢弃
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.teardown()
}

// Posts 首屏加各页按拉取顺序拼接，不去重
func (l *Loader) Posts() []*model.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*model.Post, 0, l.snapshot().Len)
	out = append(out, l.seed...)
	for _, p := range l.pages {
		out = append(out, p...)
	}
	return out
}

// Items 按当前浏览者渲染，可能与拉取时的身份不同
func (l *Loader) Items(viewer feed.Viewer) []feed.Item {
	return feed.Render(l.Posts(), viewer)
}

func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot().Len
}

// Fetching 加载中标记
func (l *Loader) Fetching() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateFetching && !l.closed
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader) NextPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextPage()
}

// Err 最近一次失败，下一次成功后清空
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
