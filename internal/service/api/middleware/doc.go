// Package middleware 브로드캐스트 API 서버에서 사용하는 Echo 미들웨어를 제공합니다.
//
// 서버 전역 체인은 api.NewHTTPServer 에서 다음 순서로 등록됩니다.
//
//	PanicRecovery → RequestID → HTTPLogger → RateLimiting → BodyLimit → Timeout → CORS → Secure
//
// RequireAuthentication, ValidateContentType 은 v1 라우트 그룹 단위로 적용됩니다.
package middleware
