package contract

// ProgressSink 이미지가 포함된 작성기의 진행 문구를 표시합니다.
//
// 구현체는 호출 즉시 반환해야 하며 작성기의 메서드를 다시 호출해서는 안 됩니다.
type ProgressSink interface {
	Show(id BroadcastID, text string)
	Hide(id BroadcastID)
}

// ProgressReader 현재 표시 중인 진행 문구를 조회합니다.
// ProgressSink 구현체가 함께 구현하면 작성기 상태 조회 결과에 진행 문구가 포함됩니다.
type ProgressReader interface {
	Text(id BroadcastID) (string, bool)
	All() map[BroadcastID]string
}
