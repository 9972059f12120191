package contract

// BroadcastSubmitter 작성기를 생성하고 바로 실행합니다.
type BroadcastSubmitter interface {
	Submit(req *SubmitRequest) (BroadcastID, error)
}

// BroadcastController 등록된 작성기를 취소하거나 재시도합니다.
type BroadcastController interface {
	Cancel(id BroadcastID) error
	Retry(id BroadcastID) error
}

// BroadcastQuerier 등록된 작성기의 상태를 조회합니다.
type BroadcastQuerier interface {
	Get(id BroadcastID) (WriterSnapshot, error)
	List() []WriterSnapshot
}

// BroadcastHealthChecker 서비스 실행 여부를 확인합니다.
type BroadcastHealthChecker interface {
	Health() error
}

// BroadcastService API 계층이 사용하는 브로드캐스트 서비스 기능 전체입니다.
type BroadcastService interface {
	BroadcastSubmitter
	BroadcastController
	BroadcastQuerier
	BroadcastHealthChecker
}
