package middleware

import (
	"github.com/darkkaiser/broadcast-server/internal/service/api/auth"
	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// RequireAuthentication App Key 인증을 통과한 요청만 다음 핸들러로 전달합니다.
//
// App Key는 X-App-Key 헤더로 전달하는 것이 원칙이며, app_key 쿼리 파라미터는
// 하위 호환을 위해 허용하되 경고 로그를 남깁니다.
func RequireAuthentication(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	if authenticator == nil {
		panic(constants.PanicMsgAuthenticatorRequired)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticator.Authenticate(extractAppKey(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func extractAppKey(c echo.Context) string {
	appKey := c.Request().Header.Get(constants.HeaderAppKey)
	if appKey != "" {
		return appKey
	}

	appKey = c.QueryParam(constants.QueryParamAppKey)
	if appKey != "" {
		applog.WithComponentAndFields(constants.ComponentMiddlewareAuth, applog.Fields{
			"method":    c.Request().Method,
			"path":      c.Path(),
			"remote_ip": c.RealIP(),
		}).Warn("보안 경고: 쿼리 파라미터로 App Key 전달됨 (헤더 사용 권장)")
	}
	return appKey
}
