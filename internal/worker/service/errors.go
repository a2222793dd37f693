package service

import "errors"

var (
	// ErrDataUnavailable 外部数据源失败或超时，可重试
	ErrDataUnavailable = errors.New("token data unavailable")
	// ErrDegenerateInput 输入无法构造合法序列，相同输入重试无意义
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrInvalidMint mint 不是合法的 base58 公钥
	ErrInvalidMint = errors.New("invalid mint address")
)

// IsRetryable reports whether the same call may succeed later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
