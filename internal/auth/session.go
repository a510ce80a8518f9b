package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/community-feed/internal/feed"
)

// SessionProvider session cookie -> redis 中 prefix+token 对应的用户 id
type SessionProvider struct {
	client *redis.Client
	cookie string
	prefix string
}

func NewSessionProvider(client *redis.Client, cookie, prefix string) *SessionProvider {
	return &SessionProvider{client: client, cookie: cookie, prefix: prefix}
}

func (p *SessionProvider) Viewer(r *http.Request) (feed.Viewer, error) {
	c, err := r.Cookie(p.cookie)
	if err != nil || c.Value == "" {
		return feed.AnonymousViewer, ErrNoCredentials
	}

	userID, err := p.client.Get(r.Context(), p.prefix+c.Value).Result()
	if errors.Is(err, redis.Nil) {
		// 过期或伪造的 session 视为匿名
		return feed.AnonymousViewer, ErrNoCredentials
	}
	if err != nil {
		return feed.AnonymousViewer, fmt.Errorf("lookup session: %w", err)
	}
	return feed.Viewer{ID: userID}, nil
}
