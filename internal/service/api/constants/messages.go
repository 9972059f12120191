package constants

// 응답 메시지
const (
	ErrMsgBadRequest            = "잘못된 요청입니다"
	ErrMsgBadRequestInvalidBody = "요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"
	ErrMsgUnauthorized          = "인증에 실패하였습니다"
	ErrMsgAppKeyRequired        = "app_key는 필수입니다 (X-App-Key 헤더 또는 app_key 쿼리 파라미터)"
	ErrMsgInvalidAppKey         = "app_key가 유효하지 않습니다"
	ErrMsgNotFound              = "요청한 리소스를 찾을 수 없습니다"
	ErrMsgConflict              = "현재 상태에서는 요청을 처리할 수 없습니다"
	ErrMsgUnsupportedMediaType  = "지원하지 않는 미디어 타입입니다"
	ErrMsgTooManyRequests       = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"
	ErrMsgInternalServer        = "내부 서버 오류가 발생했습니다"
	ErrMsgServiceUnavailable    = "브로드캐스트 서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요"
	ErrMsgGatewayTimeout        = "요청 처리 시간이 초과되었습니다"
)

// 로그 메시지
const (
	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgServiceHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgServiceHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgServiceHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgServiceHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다"

	LogMsgHTTP4xxClientError = "HTTP 4xx: 클라이언트 요청 오류"
	LogMsgHTTP5xxServerError = "HTTP 5xx: 서버 내부 오류"
)

// 헬스체크
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"

	DependencyBroadcastService = "broadcast_service"

	MsgDepStatusHealthy = "정상 작동 중"
)

// 필수 의존성 누락 시 panic 메시지
const (
	PanicMsgAppConfigRequired        = "AppConfig는 필수입니다"
	PanicMsgBroadcastServiceRequired = "BroadcastService는 필수입니다"
	PanicMsgAuthenticatorRequired    = "Authenticator는 필수입니다"
)
