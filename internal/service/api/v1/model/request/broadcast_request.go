package request

import "github.com/darkkaiser/broadcast-server/internal/service/contract"

// BroadcastRequest POST /api/v1/broadcasts 요청 본문입니다.
//
// 개수, 길이 제한은 설정값에 따라 브로드캐스트 서비스가 다시 검사합니다.
// 링크 제목만 있고 URL이 없는 요청은 API에서만 거절합니다.
// 이미지 경로는 서버의 이미지 디렉터리(broadcast.image_dir) 기준으로 해석됩니다.
type BroadcastRequest struct {
	Text       string   `json:"text" validate:"max=20000" korean:"본문"`
	ImagePaths []string `json:"image_paths" validate:"max=100,dive,required" korean:"이미지 경로"`
	LinkTitle  string   `json:"link_title" validate:"max=300" korean:"링크 제목"`
	LinkURL    string   `json:"link_url" validate:"required_with=LinkTitle,omitempty,http_url" korean:"링크 URL"`
}

// ToSubmitRequest 서비스 계층의 요청으로 변환합니다.
func (r *BroadcastRequest) ToSubmitRequest() *contract.SubmitRequest {
	images := make([]contract.ImageSource, 0, len(r.ImagePaths))
	for _, p := range r.ImagePaths {
		images = append(images, contract.ImageSource{Path: p})
	}

	return &contract.SubmitRequest{
		Text:      r.Text,
		Images:    images,
		LinkTitle: r.LinkTitle,
		LinkURL:   r.LinkURL,
	}
}
