// Package progress 작성기별 진행 상태 문구를 보관하는 ProgressSink 구현을 제공합니다.
package progress

import (
	"sync"

	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

const component = "progress.tracker"

// Tracker 현재 표시 중인 진행 상태를 작성기 ID별로 기억합니다.
// 진행 상태가 바뀔 때마다 디버그 로그를 남기며, 브로드캐스트 서비스는 Text/All로
// 조회한 문구를 작성기 상태에 채워 API로 내보냅니다.
type Tracker struct {
	mu      sync.RWMutex
	entries map[contract.BroadcastID]string
}

// NewTracker 빈 Tracker를 생성합니다.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[contract.BroadcastID]string),
	}
}

// Show 진행 상태를 표시하거나 갱신합니다.
func (t *Tracker) Show(id contract.BroadcastID, text string) {
	t.mu.Lock()
	t.entries[id] = text
	t.mu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"broadcast_id": id,
		"progress":     text,
	}).Debug("진행 상태 표시")
}

// Hide 진행 상태 표시를 제거합니다. 표시 중이 아니면 아무것도 하지 않습니다.
func (t *Tracker) Hide(id contract.BroadcastID) {
	t.mu.Lock()
	_, shown := t.entries[id]
	delete(t.entries, id)
	t.mu.Unlock()

	if shown {
		applog.WithComponentAndFields(component, applog.Fields{
			"broadcast_id": id,
		}).Debug("진행 상태 숨김")
	}
}

// Text 표시 중인 진행 상태 문구를 반환합니다.
func (t *Tracker) Text(id contract.BroadcastID) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	text, ok := t.entries[id]
	return text, ok
}

// All 표시 중인 모든 진행 상태의 복사본입니다.
func (t *Tracker) All() map[contract.BroadcastID]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[contract.BroadcastID]string, len(t.entries))
	for id, text := range t.entries {
		out[id] = text
	}
	return out
}
