// Package testutil 여러 패키지의 테스트가 함께 쓰는 도우미 함수입니다.
package testutil

import (
	"fmt"
	"net"
	"testing"
	"time"
)

// FreePort 지금 사용 가능한 로컬 TCP 포트를 반환합니다.
// 포트를 돌려받은 뒤 실제로 바인딩하기 전까지 다른 프로세스가 점유할 수 있습니다.
func FreePort(t testing.TB) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("사용 가능한 포트를 찾을 수 없습니다: %v", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

// WaitForServer port에서 연결을 받을 때까지 최대 timeout 동안 기다립니다.
func WaitForServer(port int, timeout time.Duration) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("%s 에서 %v 안에 서버가 시작되지 않았습니다", addr, timeout)
}
