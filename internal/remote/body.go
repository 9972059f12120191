package remote

import (
	"io"
	"net/url"
)

const (
	// maxDrainBytes 커넥션 재사용을 위해 응답 Body를 비울 때 읽을 최대 바이트 수
	maxDrainBytes = 64 * 1024

	// maxResponseBytes 성공 응답 본문을 읽을 최대 바이트 수
	maxResponseBytes = 1 << 20

	// maxBodySnippetBytes 에러 메시지에 포함할 응답 본문의 최대 바이트 수
	maxBodySnippetBytes = 4096
)

// drainAndCloseBody 커넥션 재사용을 위해 응답 Body를 일정량 읽어서 버린 뒤 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
}

// redactURL 로그와 에러 메시지에 남길 URL에서 사용자 정보와 쿼리를 제거합니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	c := *u
	c.User = nil
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}
