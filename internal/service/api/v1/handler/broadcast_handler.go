package handler

import (
	"net/http"

	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	apihandler "github.com/darkkaiser/broadcast-server/internal/service/api/handler"
	"github.com/darkkaiser/broadcast-server/internal/service/api/httputil"
	"github.com/darkkaiser/broadcast-server/internal/service/api/v1/model/request"
	"github.com/darkkaiser/broadcast-server/internal/service/api/v1/model/response"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// SubmitBroadcastHandler POST /api/v1/broadcasts
//
// 작성기를 등록하고 곧바로 202 Accepted 와 ID를 반환합니다.
// 업로드와 전송 결과는 GET /api/v1/broadcasts/:id 로 확인합니다.
func (h *Handler) SubmitBroadcastHandler(c echo.Context) error {
	req := new(request.BroadcastRequest)
	if err := c.Bind(req); err != nil {
		return httputil.NewBadRequestError(constants.ErrMsgBadRequestInvalidBody)
	}
	if err := apihandler.ValidateRequest(req); err != nil {
		return httputil.NewBadRequestError(apihandler.FormatValidationError(err))
	}

	id, err := h.broadcastService.Submit(req.ToSubmitRequest())
	if err != nil {
		return err
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"broadcast_id": id,
		"images":       len(req.ImagePaths),
		"remote_ip":    c.RealIP(),
		"request_id":   c.Response().Header().Get(echo.HeaderXRequestID),
	}).Info("브로드캐스트 작성 요청 접수")

	return c.JSON(http.StatusAccepted, response.SubmitResponse{ID: id})
}

// ListBroadcastsHandler GET /api/v1/broadcasts
func (h *Handler) ListBroadcastsHandler(c echo.Context) error {
	snapshots := h.broadcastService.List()
	if snapshots == nil {
		snapshots = []contract.WriterSnapshot{}
	}

	return c.JSON(http.StatusOK, response.ListResponse{
		Count:      len(snapshots),
		Broadcasts: snapshots,
	})
}

// GetBroadcastHandler GET /api/v1/broadcasts/:id
func (h *Handler) GetBroadcastHandler(c echo.Context) error {
	id, err := contract.ParseBroadcastID(c.Param("id"))
	if err != nil {
		return err
	}

	snapshot, err := h.broadcastService.Get(id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snapshot)
}

// RetryBroadcastHandler POST /api/v1/broadcasts/:id/retry
//
// 실패한 작성기만 재시도할 수 있으며, 그 외 상태면 409 Conflict 입니다.
func (h *Handler) RetryBroadcastHandler(c echo.Context) error {
	id, err := contract.ParseBroadcastID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.broadcastService.Retry(id); err != nil {
		return err
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"broadcast_id": id,
		"remote_ip":    c.RealIP(),
	}).Info("브로드캐스트 재시도 요청 접수")

	return c.JSON(http.StatusAccepted, response.AcceptedResponse{
		ID:      id,
		Message: "재시도 요청이 접수되었습니다",
	})
}

// CancelBroadcastHandler DELETE /api/v1/broadcasts/:id
//
// 취소는 서비스의 이벤트 루프에서 처리되므로 202 Accepted 를 반환합니다.
func (h *Handler) CancelBroadcastHandler(c echo.Context) error {
	id, err := contract.ParseBroadcastID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.broadcastService.Cancel(id); err != nil {
		return err
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"broadcast_id": id,
		"remote_ip":    c.RealIP(),
	}).Info("브로드캐스트 취소 요청 접수")

	return c.JSON(http.StatusAccepted, response.AcceptedResponse{
		ID:      id,
		Message: "취소 요청이 접수되었습니다",
	})
}
