package errors

import "strconv"

// ErrorType 에러의 종류를 나타내는 타입입니다.
type ErrorType int

const (
	// Unknown 분류할 수 없는 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (잘못된 상태 전이 등)
	Internal

	// System 파일, 네트워크 등 인프라 수준의 오류
	System

	// Unauthorized 인증 실패
	Unauthorized

	// InvalidInput 잘못된 입력값
	InvalidInput

	// Conflict 현재 상태에서 허용되지 않는 요청
	Conflict

	// NotFound 대상을 찾을 수 없음
	NotFound

	// ExecutionFailed 원격 서비스가 요청을 처리하지 못함
	ExecutionFailed

	// ParsingFailed 응답 본문 해석 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 원격 서비스 일시적 사용 불가
	Unavailable

	// Canceled 호출자가 취소한 작업
	Canceled
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	Unauthorized:    "Unauthorized",
	InvalidInput:    "InvalidInput",
	Conflict:        "Conflict",
	NotFound:        "NotFound",
	ExecutionFailed: "ExecutionFailed",
	ParsingFailed:   "ParsingFailed",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
	Canceled:        "Canceled",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}
