package contract

// WriterState 브로드캐스트 작성기의 진행 상태입니다.
type WriterState int

const (
	WriterStateCreated WriterState = iota
	WriterStateUploading
	WriterStateSending
	WriterStateSent
	WriterStateFailed
	WriterStateCanceled
)

var writerStateNames = map[WriterState]string{
	WriterStateCreated:   "created",
	WriterStateUploading: "uploading",
	WriterStateSending:   "sending",
	WriterStateSent:      "sent",
	WriterStateFailed:    "failed",
	WriterStateCanceled:  "canceled",
}

func (s WriterState) String() string {
	if name, ok := writerStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal 더 이상 네트워크 요청이나 이벤트가 발생하지 않는 상태인지 여부입니다.
func (s WriterState) IsTerminal() bool {
	return s == WriterStateSent || s == WriterStateFailed || s == WriterStateCanceled
}

// MarshalText JSON 응답에서 상태를 문자열로 표현합니다.
func (s WriterState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
