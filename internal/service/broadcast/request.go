package broadcast

import (
	"context"
	"sync"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
)

// pendingRequest 별도 고루틴에서 실행되는 원격 호출 하나의 핸들입니다.
// cancel은 best-effort이며, 호출이 이미 끝난 뒤에 불러도 안전합니다.
type pendingRequest struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

// newPendingRequest 요청 핸들을 만들고 wg에 등록합니다.
// 반환된 요청은 반드시 runRequest로 실행되어야 wg가 해제됩니다.
func newPendingRequest(wg *sync.WaitGroup) *pendingRequest {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	return &pendingRequest{ctx: ctx, cancel: cancel, wg: wg}
}

// runRequest call을 새 고루틴에서 실행하고 결과를 done에 전달합니다.
// call에서 발생한 패닉은 Internal 에러로 변환됩니다.
func runRequest[T any](r *pendingRequest, call func(ctx context.Context) (T, error), done func(T, error)) {
	go func() {
		defer r.wg.Done()
		defer r.cancel()

		v, err := safeCall(r.ctx, call)
		done(v, err)
	}()
}

func safeCall[T any](ctx context.Context, call func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = newPanicError("원격 요청", rec)
		}
	}()

	v, err = call(ctx)
	if err != nil && ctx.Err() != nil && !apperrors.Is(err, apperrors.Canceled) {
		err = apperrors.Wrap(err, apperrors.Canceled, "요청이 취소되었습니다")
	}
	return v, err
}
