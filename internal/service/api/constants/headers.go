package constants

const (
	HeaderAppKey = "X-App-Key"

	QueryParamAppKey = "app_key"

	HeaderRetryAfter = "Retry-After"
)

// SensitiveQueryParams 요청 로그에 남기기 전에 값을 가려야 하는 쿼리 파라미터입니다.
var SensitiveQueryParams = []string{
	QueryParamAppKey,
	"api_key",
	"password",
	"token",
	"secret",
}
