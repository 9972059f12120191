package contract

import (
	"strings"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
)

// SubmitRequest 새 브로드캐스트 작성 요청입니다.
type SubmitRequest struct {
	Text      string
	Images    []ImageSource
	LinkTitle string
	LinkURL   string
}

// Validate 설정과 무관한 요청 자체의 정합성을 검사합니다.
// 이미지 개수, 본문 길이 제한은 서비스에서 설정값으로 검사합니다.
func (r *SubmitRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" && len(r.Images) == 0 {
		return apperrors.New(apperrors.InvalidInput, "본문 또는 이미지 중 하나는 반드시 포함되어야 합니다")
	}
	for i, img := range r.Images {
		if strings.TrimSpace(img.Path) == "" {
			return apperrors.Newf(apperrors.InvalidInput, "%d번째 이미지 경로가 비어 있습니다", i+1)
		}
	}
	return nil
}
