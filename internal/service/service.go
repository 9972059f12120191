// Package service 서버를 구성하는 장기 실행 서비스들의 공통 생명주기 규약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 서버 시작 시 한 번 시작되어 serviceStopCtx가 취소될 때까지 동작하는 서비스입니다.
//
// Start는 즉시 반환해야 하며, 서비스가 완전히 종료되면 serviceStopWG.Done()을 호출합니다.
// 시작에 실패해 에러를 반환하는 경우에도 Done()은 반드시 호출되어야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
