package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 请求参数不合法，客户端问题，不重试
	ErrValidation = errors.New("invalid feed request")
	// ErrStoreUnavailable 存储读取失败
	ErrStoreUnavailable = errors.New("feed store unavailable")
)

// ValidationError 指明被拒绝的参数
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError 包装存储错误，使其匹配 ErrStoreUnavailable
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
