package httputil

import (
	"net/http"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	"github.com/darkkaiser/broadcast-server/internal/service/api/model/response"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// echo.HTTPError는 그대로, 서비스 계층이 반환한 AppError는 타입에 따라 상태 코드를 정해
// 표준 ErrorResponse JSON 형식으로 응답합니다.
func ErrorHandler(err error, c echo.Context) {
	code, message := resolve(err)

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Error(constants.LogMsgHTTP5xxServerError)
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Warn(constants.LogMsgHTTP4xxClientError)
	}

	// 이중 응답 방지
	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}

	c.JSON(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

func resolve(err error) (int, string) {
	if he, ok := err.(*echo.HTTPError); ok {
		message := http.StatusText(he.Code)
		switch m := he.Message.(type) {
		case string:
			message = m
		case response.ErrorResponse:
			message = m.Message
		}

		// 라우터가 만든 기본 404 메시지는 한국어 메시지로 통일
		if he.Code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
			message = constants.ErrMsgNotFound
		}
		return he.Code, message
	}

	var appErr *apperrors.AppError
	if !apperrors.As(err, &appErr) {
		return http.StatusInternalServerError, constants.ErrMsgInternalServer
	}

	code := StatusCode(apperrors.UnderlyingType(err))
	switch {
	case code == http.StatusGatewayTimeout:
		return code, constants.ErrMsgGatewayTimeout
	case code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable:
		// 내부 오류의 상세 내용은 로그에만 남긴다.
		return code, constants.ErrMsgInternalServer
	}
	return code, appErr.Message()
}

// StatusCode 에러 타입에 대응하는 HTTP 상태 코드를 반환합니다.
func StatusCode(t apperrors.ErrorType) int {
	switch t {
	case apperrors.InvalidInput:
		return http.StatusBadRequest
	case apperrors.Unauthorized:
		return http.StatusUnauthorized
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.Unavailable:
		return http.StatusServiceUnavailable
	case apperrors.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
