package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title string   `validate:"required,max=5" korean:"제목"`
	Link  string   `validate:"omitempty,http_url" korean:"링크"`
	Tags  []string `validate:"max=2,dive,min=2" korean:"태그"`
	Code  string   `validate:"omitempty,min=3"`
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     sampleRequest
		wantMsg string
	}{
		{"정상", sampleRequest{Title: "hi", Link: "https://example.com", Tags: []string{"ab"}}, ""},
		{"필수 누락", sampleRequest{}, "제목는 필수입니다"},
		{"문자열 최대 길이", sampleRequest{Title: "123456"}, "제목는 최대 5자까지 입력 가능합니다"},
		{"URL 형식", sampleRequest{Title: "a", Link: "not-a-url"}, "링크는 올바른 URL 형식이어야 합니다"},
		{"슬라이스 최대 개수", sampleRequest{Title: "a", Tags: []string{"ab", "cd", "ef"}}, "태그는 최대 2개까지 입력 가능합니다"},
		{"korean 태그 없는 필드", sampleRequest{Title: "a", Code: "x"}, "Code는 최소 3자 이상이어야 합니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateRequest(&tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, FormatValidationError(err))
		})
	}
}

func TestFormatValidationError_NonValidatorError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatValidationError(nil))
	assert.Equal(t, "plain", FormatValidationError(errors.New("plain")))
}
