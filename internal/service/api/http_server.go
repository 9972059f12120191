package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	"github.com/darkkaiser/broadcast-server/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/broadcast-server/internal/service/api/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정입니다.
type HTTPServerConfig struct {
	Debug bool

	// AllowOrigins CORS 허용 Origin 목록
	AllowOrigins []string

	// RequestTimeout 요청 하나의 처리 제한 시간 (0이면 기본값)
	RequestTimeout time.Duration
}

// NewHTTPServer 미들웨어 체인과 전역 에러 핸들러가 설정된 Echo 인스턴스를 생성합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = constants.DefaultReadTimeout
	e.Server.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	e.Server.WriteTimeout = constants.DefaultWriteTimeout
	e.Server.IdleTimeout = constants.DefaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: logrus.StandardLogger()}

	e.HTTPErrorHandler = httputil.ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = constants.DefaultRequestTimeout
	}

	// 미들웨어 순서
	//  1. PanicRecovery: 이후 모든 미들웨어의 panic 복구
	//  2. RequestID: 로그와 에러 응답에서 사용할 요청 ID 발급
	//  3. Server 헤더 제거
	//  4. HTTPLogger
	//  5. RateLimiting: IP별 요청 제한
	//  6. BodyLimit
	//  7. Timeout
	//  8. CORS
	//  9. Secure
	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(appmiddleware.RateLimiting(constants.DefaultRateLimitPerSecond, constants.DefaultRateLimitBurst))
	e.Use(middleware.BodyLimit(constants.DefaultMaxBodySize))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, constants.HeaderAppKey},
	}))
	e.Use(middleware.Secure())

	return e
}
