package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/community-feed/internal/feed"
)

// JWTProvider 读取 HS256 签名的 Authorization: Bearer <token>
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) Viewer(r *http.Request) (feed.Viewer, error) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return feed.AnonymousViewer, ErrNoCredentials
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return feed.AnonymousViewer, fmt.Errorf("parse bearer token: %w", err)
	}
	if claims.Subject == "" {
		return feed.AnonymousViewer, errors.New("bearer token has no subject")
	}
	return feed.Viewer{ID: claims.Subject}, nil
}

// Sign 签发 token；正式 token 由登录服务签发，这里供测试和本地工具使用
func (p *JWTProvider) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
