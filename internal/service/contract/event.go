package contract

// EventKind 작성기 생명주기 이벤트의 종류입니다.
type EventKind string

const (
	EventWriteStarted EventKind = "write_started"
	EventSent         EventKind = "sent"
	EventSendFailed   EventKind = "send_failed"
)

// Event 작성기가 발행하는 생명주기 이벤트입니다.
type Event interface {
	Kind() EventKind
	BroadcastID() BroadcastID
}

// BroadcastWriteStarted 실행(Start 또는 Retry)이 시작될 때마다 한 번 발행됩니다.
type BroadcastWriteStarted struct {
	ID     BroadcastID
	Writer BroadcastWriter
}

func (e BroadcastWriteStarted) Kind() EventKind          { return EventWriteStarted }
func (e BroadcastWriteStarted) BroadcastID() BroadcastID { return e.ID }

// BroadcastSent 게시에 성공했을 때 발행됩니다.
type BroadcastSent struct {
	ID        BroadcastID
	Broadcast *Broadcast
	Writer    BroadcastWriter
}

func (e BroadcastSent) Kind() EventKind          { return EventSent }
func (e BroadcastSent) BroadcastID() BroadcastID { return e.ID }

// BroadcastSendFailed 업로드 또는 게시가 실패했을 때 발행됩니다. 취소된 경우에는 발행되지 않습니다.
type BroadcastSendFailed struct {
	ID     BroadcastID
	Err    error
	Writer BroadcastWriter
}

func (e BroadcastSendFailed) Kind() EventKind          { return EventSendFailed }
func (e BroadcastSendFailed) BroadcastID() BroadcastID { return e.ID }

// EventPublisher 이벤트를 비동기로 전달합니다. Publish는 블록되지 않으며,
// 같은 Publisher로 발행된 이벤트는 발행 순서대로 전달됩니다.
type EventPublisher interface {
	Publish(e Event)
}
