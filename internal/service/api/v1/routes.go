// Package v1 /api/v1 라우트를 등록합니다.
package v1

import (
	"github.com/darkkaiser/broadcast-server/internal/service/api/auth"
	"github.com/darkkaiser/broadcast-server/internal/service/api/middleware"
	"github.com/darkkaiser/broadcast-server/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 모든 v1 엔드포인트는 App Key 인증을 거칩니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, authenticator *auth.Authenticator) {
	g := e.Group("/api/v1/broadcasts", middleware.RequireAuthentication(authenticator))

	g.POST("", h.SubmitBroadcastHandler, middleware.ValidateContentType(echo.MIMEApplicationJSON))
	g.GET("", h.ListBroadcastsHandler)
	g.GET("/:id", h.GetBroadcastHandler)
	g.POST("/:id/retry", h.RetryBroadcastHandler)
	g.DELETE("/:id", h.CancelBroadcastHandler)
}
