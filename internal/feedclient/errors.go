package feedclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/d60-Lab/community-feed/internal/feed"
)

var (
	// ErrNetwork 传输失败：连不上、超时、响应体解析失败
	ErrNetwork = errors.New("feed request failed")
	// ErrFetchInFlight 已有请求在进行，本次触发被丢弃
	ErrFetchInFlight = errors.New("fetch already in flight")
	// ErrExhausted 已见过不满一页的结果
	ErrExhausted = errors.New("feed exhausted")
	ErrClosed = errors.New("loader closed")
)

// StatusError 接口返回非 200
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed endpoint returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap 把状态码映射到共享的错误种类
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnprocessableEntity:
		return feed.ErrValidation
	case e.StatusCode >= 500:
		return feed.ErrStoreUnavailable
	default:
		return nil
	}
}

// Retryable 同一页稍后重试是否可能成功
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, feed.ErrStoreUnavailable)
}
