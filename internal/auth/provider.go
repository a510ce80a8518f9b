// Package auth 识别请求的浏览者。session 与 token 由别处签发，这里只读取。
package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/pkg/logger"
)

// ErrNoCredentials 请求里没有该 provider 能识别的凭证
var ErrNoCredentials = errors.New("no credentials")

// Provider 返回请求的浏览者；对它而言是匿名请求时返回 ErrNoCredentials
type Provider interface {
	Viewer(r *http.Request) (feed.Viewer, error)
}

// Chain 依次尝试，返回第一个识别出的身份
type Chain []Provider

func (c Chain) Viewer(r *http.Request) (feed.Viewer, error) {
	var errs []error
	for _, p := range c {
		v, err := p.Viewer(r)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return feed.AnonymousViewer, errors.Join(errs...)
	}
	return feed.AnonymousViewer, ErrNoCredentials
}

// Resolve 不会失败：出错时降级为匿名
func Resolve(p Provider, r *http.Request) feed.Viewer {
	if p == nil {
		return feed.AnonymousViewer
	}
	v, err := p.Viewer(r)
	if err != nil {
		if !errors.Is(err, ErrNoCredentials) {
			logger.Warn("viewer resolution failed, continuing anonymously",
				zap.String("path", r.URL.Path), zap.Error(err))
		}
		return feed.AnonymousViewer
	}
	return v
}
