package contract

import "time"

// BroadcastWriter 이벤트 수신자가 전달받는 작성기 참조입니다.
type BroadcastWriter interface {
	ID() BroadcastID
	Snapshot() WriterSnapshot

	// Retry 실패한 작성기를 다시 실행합니다. 이미 업로드된 이미지는 다시 올리지 않습니다.
	Retry() error

	// Cancel 진행 중인 요청을 중단합니다. 몇 번을 호출해도 안전합니다.
	Cancel()
}

// WriterSnapshot 특정 시점의 작성기 상태를 복사한 값입니다.
type WriterSnapshot struct {
	ID             BroadcastID `json:"id"`
	State          WriterState `json:"state"`
	Text           string      `json:"text"`
	LinkTitle      string      `json:"link_title,omitempty"`
	LinkURL        string      `json:"link_url,omitempty"`
	TotalImages    int         `json:"total_images"`
	UploadedImages int         `json:"uploaded_images"`
	Progress       string      `json:"progress,omitempty"`
	Runs           int         `json:"runs"`
	LastError      string      `json:"last_error,omitempty"`
	Broadcast      *Broadcast  `json:"broadcast,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
