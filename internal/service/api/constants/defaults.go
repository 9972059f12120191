package constants

import "time"

// HTTP 서버 기본값
const (
	DefaultRequestTimeout = 60 * time.Second

	DefaultReadTimeout       = 15 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 65 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// DefaultMaxBodySize 이미지는 경로로만 전달되므로 본문은 JSON 요청 하나 크기면 충분하다.
	DefaultMaxBodySize = "256K"

	DefaultRateLimitPerSecond = 20
	DefaultRateLimitBurst     = 40

	ShutdownTimeout = 5 * time.Second
)
