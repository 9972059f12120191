package response

// ErrorResponse 모든 API 에러의 공통 응답 본문입니다.
type ErrorResponse struct {
	// ResultCode HTTP 상태 코드와 같은 값
	ResultCode int `json:"result_code"`

	Message string `json:"message"`
}
