package remote

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/tidwall/gjson"
)

// HTTPStatusError 원격 서비스가 허용되지 않은 상태 코드를 반환했을 때의 에러입니다.
// Cause에 상태 코드로 분류된 apperrors.AppError가 들어 있습니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string
	Cause       error
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}

// statusErrorType HTTP 상태 코드를 에러 타입으로 분류합니다.
func statusErrorType(code int) apperrors.ErrorType {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Unauthorized

	case http.StatusNotFound:
		return apperrors.NotFound

	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return apperrors.InvalidInput

	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return apperrors.Unavailable
	}

	if code >= 500 {
		return apperrors.Unavailable
	}
	return apperrors.ExecutionFailed
}

// checkResponseStatus 상태 코드가 allowed에 없으면 HTTPStatusError를 반환합니다.
// allowed가 비어 있으면 200 OK만 허용합니다.
//
// 에러를 반환한 경우 resp.Body의 일부가 읽힌 상태이므로 호출자는 Body를 닫아야 합니다.
func checkResponseStatus(resp *http.Response, allowed ...int) error {
	if len(allowed) == 0 {
		allowed = []int{http.StatusOK}
	}
	if slices.Contains(allowed, resp.StatusCode) {
		return nil
	}

	urlStr := ""
	if resp.Request != nil {
		urlStr = redactURL(resp.Request.URL)
	}

	var snippet string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		snippet = strings.TrimSpace(string(b))
	}

	message := fmt.Sprintf("원격 서비스 요청이 실패했습니다. 상태 코드: %s", resp.Status)
	if m := gjson.Get(snippet, "message"); gjson.Valid(snippet) && m.Exists() && m.String() != "" {
		message += fmt.Sprintf(" (%s)", m.String())
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         urlStr,
		Header:      redactHeaders(resp.Header),
		BodySnippet: snippet,
		Cause:       apperrors.New(statusErrorType(resp.StatusCode), message),
	}
}

// redactHeaders 인증 관련 헤더를 가린 복사본을 반환합니다.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()
	for _, key := range []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"} {
		if masked.Get(key) != "" {
			masked.Set(key, "***")
		}
	}
	return masked
}
