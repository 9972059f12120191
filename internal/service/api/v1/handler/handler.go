// Package handler v1 브로드캐스트 API 핸들러를 제공합니다.
package handler

import (
	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
)

// Handler 브로드캐스트 작성, 조회, 취소, 재시도 요청을 브로드캐스트 서비스로 전달합니다.
// 서비스 계층의 AppError는 그대로 반환하며, 상태 코드 변환은 전역 에러 핸들러가 담당합니다.
type Handler struct {
	broadcastService contract.BroadcastService
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(broadcastService contract.BroadcastService) *Handler {
	if broadcastService == nil {
		panic(constants.PanicMsgBroadcastServiceRequired)
	}

	return &Handler{
		broadcastService: broadcastService,
	}
}
