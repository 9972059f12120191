// Package remote 이미지 업로드와 브로드캐스트 게시를 담당하는 원격 서비스 HTTP 클라이언트입니다.
//
// 요청은 Fetcher 데코레이터 체인(RetryFetcher → HTTPFetcher)을 거쳐 전송됩니다.
// 업로드와 게시는 POST 요청이므로 재시도되지 않으며, 재시도는 상태 확인 같은
// 멱등 요청에만 적용됩니다.
package remote

import (
	"net"
	"net/http"
	"time"
)

// component 원격 클라이언트의 로깅용 컴포넌트 이름
const component = "remote.client"

// Fetcher HTTP 요청을 수행하는 인터페이스입니다.
//
// 반환된 응답의 Body는 호출자가 닫아야 합니다. 에러가 반환된 경우 응답은 nil입니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher net/http 클라이언트를 감싸는 기본 Fetcher입니다.
type HTTPFetcher struct {
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 요청 하나당 timeout 제한을 갖는 HTTPFetcher를 생성합니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// CloseIdleConnections 유휴 커넥션을 정리합니다. 종료 시 호출합니다.
func (f *HTTPFetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}

// idleConnectionCloser 유휴 커넥션 정리를 지원하는 Fetcher입니다.
type idleConnectionCloser interface {
	CloseIdleConnections()
}
