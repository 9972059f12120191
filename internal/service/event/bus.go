// Package event 브로드캐스트 작성기가 발행하는 생명주기 이벤트를 구독자에게 비동기로 전달합니다.
package event

import (
	"context"
	"sync"

	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

// component 이벤트 버스의 로깅용 컴포넌트 이름
const component = "event.bus"

// Handler 이벤트 하나를 처리하는 구독자 함수입니다.
// 모든 Handler는 단일 디스패처 고루틴에서 발행 순서대로 호출됩니다.
type Handler func(e contract.Event)

// Bus contract.EventPublisher 구현체입니다.
//
// Publish는 이벤트를 메모리 큐에 적재만 하고 즉시 반환하며, 디스패처 고루틴이
// 큐에서 이벤트를 꺼내 등록된 Handler들에게 순서대로 전달합니다.
// 큐에 상한이 없으므로 Publish는 어떤 경우에도 블록되지 않습니다.
//
// 작성기는 상태 잠금을 넘겨받은 채로 Publish를 호출하므로, Handler 안에서 작성기의
// Retry, Cancel을 호출해도 교착 상태가 발생하지 않습니다.
type Bus struct {
	mu       sync.Mutex
	queue    []contract.Event
	handlers []Handler

	// notifyC 큐에 새 이벤트가 들어왔음을 디스패처에게 알린다. 신호가 합쳐져도 되므로 버퍼는 1이다.
	notifyC chan struct{}

	running bool
	closed  bool
}

// NewBus 이벤트 버스를 생성합니다.
func NewBus() *Bus {
	return &Bus{
		notifyC: make(chan struct{}, 1),
	}
}

// Subscribe 이벤트 구독자를 등록합니다. 등록 이후 전달되는 이벤트부터 수신합니다.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// 디스패처가 잠금 밖에서 순회하므로 새 슬라이스로 교체한다.
	handlers := make([]Handler, 0, len(b.handlers)+1)
	handlers = append(handlers, b.handlers...)
	b.handlers = append(handlers, h)
}

// Publish 이벤트를 큐에 적재합니다. 버스가 종료된 뒤 발행된 이벤트는 버려집니다.
func (b *Bus) Publish(e contract.Event) {
	if e == nil {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		applog.WithComponentAndFields(component, applog.Fields{
			"broadcast_id": e.BroadcastID(),
			"kind":         e.Kind(),
		}).Warn("이벤트 버스가 종료되어 이벤트를 전달하지 않습니다")
		return
	}
	b.queue = append(b.queue, e)
	b.mu.Unlock()

	select {
	case b.notifyC <- struct{}{}:
	default:
	}
}

// Start 디스패처 고루틴을 시작합니다. serviceStopCtx가 취소되면 큐에 남은 이벤트를
// 모두 전달한 뒤 serviceStopWG.Done()을 호출합니다.
func (b *Bus) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	applog.WithComponent(component).Info("이벤트 버스 시작중...")

	if b.running || b.closed {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("이벤트 버스가 이미 시작됨!!!")
		return nil
	}

	b.running = true

	go b.dispatchLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(component).Info("이벤트 버스 시작됨")

	return nil
}

func (b *Bus) dispatchLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	// Start 이전에 발행된 이벤트
	b.drain()

	for {
		select {
		case <-b.notifyC:
			b.drain()

		case <-serviceStopCtx.Done():
			applog.WithComponent(component).Info("이벤트 버스 중지중...")

			b.mu.Lock()
			b.closed = true
			b.mu.Unlock()

			n := b.drain()

			applog.WithComponentAndFields(component, applog.Fields{
				"flushed_events": n,
			}).Info("이벤트 버스 중지됨")
			return
		}
	}
}

// drain 큐가 빌 때까지 이벤트를 꺼내 전달하고, 전달한 이벤트 수를 반환합니다.
func (b *Bus) drain() int {
	n := 0
	for {
		b.mu.Lock()
		events := b.queue
		b.queue = nil
		handlers := b.handlers
		b.mu.Unlock()

		if len(events) == 0 {
			return n
		}

		for _, e := range events {
			for _, h := range handlers {
				b.dispatch(h, e)
			}
		}
		n += len(events)
	}
}

func (b *Bus) dispatch(h Handler, e contract.Event) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"broadcast_id": e.BroadcastID(),
				"kind":         e.Kind(),
				"panic":        r,
			}).Error("이벤트 구독자에서 패닉이 발생하여 복구했습니다")
		}
	}()

	h(e)
}
