package response

import "github.com/darkkaiser/broadcast-server/internal/service/contract"

// SubmitResponse 작성 요청이 접수되었을 때의 응답입니다.
type SubmitResponse struct {
	ID contract.BroadcastID `json:"id"`
}

// AcceptedResponse 취소, 재시도처럼 비동기로 처리되는 요청의 응답입니다.
type AcceptedResponse struct {
	ID      contract.BroadcastID `json:"id"`
	Message string               `json:"message"`
}

// ListResponse GET /api/v1/broadcasts 응답입니다.
type ListResponse struct {
	Count      int                       `json:"count"`
	Broadcasts []contract.WriterSnapshot `json:"broadcasts"`
}
