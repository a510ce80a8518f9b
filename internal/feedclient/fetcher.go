package feedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/model"
	"github.com/d60-Lab/community-feed/internal/service"
)

// Fetcher 拉取一页
type Fetcher interface {
	Fetch(ctx context.Context, p feed.Params) ([]*model.Post, error)
}

type FetcherFunc func(ctx context.Context, p feed.Params) ([]*model.Post, error)

func (f FetcherFunc) Fetch(ctx context.Context, p feed.Params) ([]*model.Post, error) {
	return f(ctx, p)
}

// HTTPFetcher 调用 GET {base}/api/posts
type HTTPFetcher struct {
	base   string
	client *http.Client
	token  string
	cookie *http.Cookie
}

type HTTPOption func(*HTTPFetcher)

// WithHTTPClient 替换默认 client（10s 超时）
func WithHTTPClient(c *http.Client) HTTPOption { return func(f *HTTPFetcher) { f.client = c } }

func WithBearer(token string) HTTPOption { return func(f *HTTPFetcher) { f.token = token } }

func WithSessionCookie(c *http.Cookie) HTTPOption { return func(f *HTTPFetcher) { f.cookie = c } }

func NewHTTPFetcher(base string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, p feed.Params) ([]*model.Post, error) {
	var posts []*model.Post
	if err := f.getJSON(ctx, f.base+"/api/posts?"+p.Encode().Encode(), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Seed 从 /api/feed 取首屏；给了社区名时取 /api/r/{name}/feed
func (f *HTTPFetcher) Seed(ctx context.Context, communityName *string) (*feed.Seed, error) {
	u := f.base + "/api/feed"
	if communityName != nil {
		u = f.base + "/api/r/" + url.PathEscape(*communityName) + "/feed"
	}
	var seed feed.Seed
	if err := f.getJSON(ctx, u, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (f *HTTPFetcher) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %w", ErrNetwork, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var r struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &r) == nil && r.Message != "" {
		return r.Message
	}
	return strings.TrimSpace(string(body))
}

// LocalFetcher 进程内直接走接口同一个 service，浏览者在构造时固定
func LocalFetcher(svc service.FeedService, viewer feed.Viewer) Fetcher {
	return FetcherFunc(func(ctx context.Context, p feed.Params) ([]*model.Post, error) {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		page, err := svc.Resolve(ctx, viewer, p.Filter(), p.PageRequest())
		if err != nil {
			return nil, err
		}
		return page.Posts, nil
	})
}
