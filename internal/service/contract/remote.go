package contract

import "context"

// ImageUploader 이미지 첨부를 원격 서비스에 올리고 접근 가능한 URL을 돌려받습니다.
//
// 호출은 ctx가 취소될 때까지 블록될 수 있습니다. ctx 취소로 중단된 경우
// apperrors.Canceled 타입의 에러를 반환해야 합니다.
type ImageUploader interface {
	UploadImage(ctx context.Context, image ImageSource) (string, error)
}

// BroadcastSender 본문, 업로드된 이미지 URL, 링크를 묶어 브로드캐스트를 게시합니다.
type BroadcastSender interface {
	SendBroadcast(ctx context.Context, text string, imageURLs []string, linkTitle, linkURL string) (*Broadcast, error)
}

// RemoteClient 작성기가 사용하는 원격 서비스 기능 전체입니다.
type RemoteClient interface {
	ImageUploader
	BroadcastSender
}
