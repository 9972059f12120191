package event

import (
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

const subscriberComponent = "event.log_subscriber"

// LogSubscriber 작성기 생명주기 이벤트를 운영 로그로 남기는 구독자입니다.
func LogSubscriber(e contract.Event) {
	fields := applog.Fields{
		"broadcast_id": e.BroadcastID(),
		"event":        e.Kind(),
	}

	switch ev := e.(type) {
	case contract.BroadcastWriteStarted:
		applog.WithComponentAndFields(subscriberComponent, fields).Info("브로드캐스트 작성 시작")

	case contract.BroadcastSent:
		if ev.Broadcast != nil {
			fields["remote_id"] = ev.Broadcast.RemoteID
			fields["images"] = len(ev.Broadcast.ImageURLs)
		}
		applog.WithComponentAndFields(subscriberComponent, fields).Info("브로드캐스트 게시 완료")

	case contract.BroadcastSendFailed:
		fields["error"] = ev.Err
		applog.WithComponentAndFields(subscriberComponent, fields).Warn("브로드캐스트 게시 실패: 재시도할 수 있습니다")

	default:
		applog.WithComponentAndFields(subscriberComponent, fields).Debug("알 수 없는 이벤트")
	}
}
