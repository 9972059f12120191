package broadcast

// step 작성기가 현재 기다리고 있는 네트워크 요청입니다.
//
// 요청 완료 콜백은 자신을 발행한 step 값을 들고 돌아오며, 작성기의 현재 step과
// 같을 때만 상태를 변경합니다. 취소나 재시작으로 step이 바뀐 뒤 도착한 콜백은 버려집니다.
type step interface {
	request() *pendingRequest
}

// noStep 진행 중인 요청이 없음
type noStep struct{}

func (noStep) request() *pendingRequest { return nil }

// uploadingStep index 번째 이미지를 업로드하는 중
type uploadingStep struct {
	index int
	req   *pendingRequest
}

func (s uploadingStep) request() *pendingRequest { return s.req }

// sendingStep 최종 브로드캐스트를 게시하는 중
type sendingStep struct {
	req *pendingRequest
}

func (s sendingStep) request() *pendingRequest { return s.req }
