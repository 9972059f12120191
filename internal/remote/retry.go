package remote

import (
	"context"
	"crypto/x509"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

const (
	maxAllowedRetries = 10

	// defaultMaxRetryDelay 지수 백오프 대기 시간의 상한
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher 일시적인 오류로 실패한 멱등 요청을 지수 백오프로 재시도하는 데코레이터입니다.
//
// 재시도 정책:
//   - GET, HEAD, OPTIONS, PUT, DELETE 만 재시도합니다. POST, PATCH는 한 번만 전송합니다.
//   - 네트워크 오류, 408, 429, 5xx(501, 505 제외)를 재시도합니다.
//   - 대기 시간은 minRetryDelay * 2^(n-1) 범위의 Full Jitter이며 maxRetryDelay를 넘지 않습니다.
//   - 서버가 Retry-After를 보내면 그 값을 따르고, maxRetryDelay보다 길면 포기합니다.
//   - 대기 중 요청 컨텍스트가 취소되면 즉시 중단합니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher RetryFetcher를 생성합니다. maxRetries는 0~10 범위로 보정됩니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	maxRetries = min(max(maxRetries, 0), maxAllowedRetries)

	if minRetryDelay <= 0 {
		minRetryDelay = 100 * time.Millisecond
	}
	if maxRetryDelay <= 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	retries := f.maxRetries
	if !isIdempotentMethod(req.Method) {
		retries = 0
	}
	if req.Body != nil && req.GetBody == nil && retries > 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":    redactURL(req.URL),
			"method": req.Method,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := f.backoff(attempt)

			if retryAfter := retryAfterOf(lastErr); retryAfter != "" {
				if d, ok := parseRetryAfter(retryAfter); ok {
					if d > f.maxRetryDelay {
						return nil, apperrors.Wrapf(lastErr, apperrors.Unavailable, "서버가 요구한 재시도 대기 시간(%s)이 허용 범위(%s)를 초과했습니다", d, f.maxRetryDelay)
					}
					delay = d
				}
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         redactURL(req.URL),
				"retry":       attempt,
				"max_retries": retries,
				"delay":       delay.String(),
				"error":       lastErr,
			}).Warn("재시도 대기 중: 일시적 오류로 인해 요청을 다시 보냅니다")

			if err := sleepContext(req.Context(), delay); err != nil {
				return nil, err
			}

			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err == nil {
			if !isRetriableStatus(resp.StatusCode) || retries == 0 {
				return resp, nil
			}
			err = checkResponseStatus(resp)
			drainAndCloseBody(resp.Body)
		}

		if req.Context().Err() != nil || !isRetriable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, newErrMaxRetriesExceeded(lastErr)
}

func (f *RetryFetcher) backoff(attempt int) time.Duration {
	delay := f.minRetryDelay << (attempt - 1)
	if delay <= 0 || delay > f.maxRetryDelay {
		delay = f.maxRetryDelay
	}

	delay = time.Duration(rand.Int64N(int64(delay) + 1))
	if delay < time.Millisecond {
		delay = f.minRetryDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryAfterOf(err error) string {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.Header != nil {
		return statusErr.Header.Get("Retry-After")
	}
	return ""
}

// isRetriableStatus 재시도로 해결될 수 있는 상태 코드인지 확인합니다.
func isRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported:
		return false
	}
	return code >= 500
}

// isRetriable 발생한 에러가 일시적인 오류인지 판단합니다.
func isRetriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return isRetriableStatus(statusErr.StatusCode)
	}

	var hostnameErr x509.HostnameError
	var unknownAuthorityErr x509.UnknownAuthorityError
	var certificateInvalidErr x509.CertificateInvalidError
	if errors.As(err, &hostnameErr) || errors.As(err, &unknownAuthorityErr) || errors.As(err, &certificateInvalidErr) {
		return false
	}

	switch apperrors.UnderlyingType(err) {
	case apperrors.InvalidInput, apperrors.Unauthorized, apperrors.NotFound, apperrors.ExecutionFailed, apperrors.ParsingFailed:
		return false
	}

	return true
}

func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// parseRetryAfter Retry-After 헤더(초 단위 정수 또는 HTTP-date)를 해석합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}

	if date, err := http.ParseTime(value); err == nil {
		return max(time.Until(date), 0), true
	}

	return 0, false
}

// CloseIdleConnections 감싸고 있는 Fetcher가 지원하면 유휴 커넥션을 정리합니다.
func (f *RetryFetcher) CloseIdleConnections() {
	if c, ok := f.delegate.(idleConnectionCloser); ok {
		c.CloseIdleConnections()
	}
}
