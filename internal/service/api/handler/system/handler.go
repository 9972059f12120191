// Package system 인증 없이 호출할 수 있는 시스템 엔드포인트(헬스체크, 버전 정보)를 처리합니다.
package system

import (
	"net/http"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/pkg/version"
	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	"github.com/darkkaiser/broadcast-server/internal/service/api/model/system"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// Handler 시스템 엔드포인트 핸들러
type Handler struct {
	healthChecker contract.BroadcastHealthChecker

	buildInfo version.Info

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(healthChecker contract.BroadcastHealthChecker, buildInfo version.Info) *Handler {
	if healthChecker == nil {
		panic(constants.PanicMsgBroadcastServiceRequired)
	}

	return &Handler{
		healthChecker: healthChecker,

		buildInfo: buildInfo,

		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler GET /health
//
// 브로드캐스트 서비스의 실행 여부를 확인합니다. 모니터링 시스템이 본문을 해석하므로
// 서비스가 중지된 경우에도 상태 코드는 200이고 status 필드가 unhealthy가 됩니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/health",
		"remote_ip": c.RealIP(),
	}).Debug("헬스체크 요청")

	dep := system.DependencyStatus{
		Status:  constants.HealthStatusHealthy,
		Message: constants.MsgDepStatusHealthy,
	}
	if err := h.healthChecker.Health(); err != nil {
		dep = system.DependencyStatus{
			Status:  constants.HealthStatusUnhealthy,
			Message: err.Error(),
		}
	}

	return c.JSON(http.StatusOK, system.HealthResponse{
		Status: dep.Status,
		Uptime: int64(time.Since(h.serverStartTime).Seconds()),
		Dependencies: map[string]system.DependencyStatus{
			constants.DependencyBroadcastService: dep,
		},
	})
}

// VersionHandler GET /version
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, system.VersionResponse{
		Version:     h.buildInfo.Version,
		Commit:      h.buildInfo.Commit,
		BuildDate:   h.buildInfo.BuildDate,
		BuildNumber: h.buildInfo.BuildNumber,
		GoVersion:   h.buildInfo.GoVersion,
	})
}
