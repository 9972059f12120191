package contract

import (
	"path/filepath"
	"time"
)

// ImageSource 업로드할 이미지 첨부 하나를 가리킵니다.
type ImageSource struct {
	// Path 서버 로컬 파일 시스템상의 이미지 경로. 브로드캐스트 서비스에 등록될 때
	// 설정된 이미지 디렉터리(broadcast.image_dir) 기준의 절대 경로로 바뀐다.
	Path string `json:"path"`
}

// Name 업로드 시 사용할 파일 이름입니다.
func (s ImageSource) Name() string {
	return filepath.Base(s.Path)
}

// Broadcast 원격 서비스가 게시를 완료한 뒤 돌려준 브로드캐스트 레코드입니다.
type Broadcast struct {
	RemoteID  string    `json:"remote_id"`
	Text      string    `json:"text"`
	ImageURLs []string  `json:"image_urls,omitempty"`
	LinkTitle string    `json:"link_title,omitempty"`
	LinkURL   string    `json:"link_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
