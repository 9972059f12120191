package constants

// 로깅용 컴포넌트 이름
const (
	ComponentService = "api.service"

	ComponentHandler = "api.handler"

	ComponentMiddleware = "api.middleware"

	ComponentMiddlewareAuth = "api.middleware.auth"

	ComponentErrorHandler = "api.error_handler"
)
