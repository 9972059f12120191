package api

import (
	"github.com/darkkaiser/broadcast-server/internal/service/api/handler/system"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 인증이 필요 없는 전역 라우트를 등록합니다.
// v1 API 라우트는 v1.RegisterRoutes 에서 등록합니다.
func RegisterRoutes(e *echo.Echo, h *system.Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)
}
