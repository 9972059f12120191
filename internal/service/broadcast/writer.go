package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

const writerComponent = "broadcast.writer"

const (
	progressUploadingFormat = "이미지 업로드 중 (%d/%d)"
	progressSending         = "전송 중"
)

// Writer 브로드캐스트 하나를 작성하는 재개 가능한 작업입니다.
//
// 이미지를 한 장씩 순서대로 업로드한 뒤, 본문과 업로드된 이미지 URL, 링크를 묶어
// 게시합니다. 실행 하나(Start 또는 Retry)마다 BroadcastWriteStarted 이벤트가 정확히
// 한 번, BroadcastSent 와 BroadcastSendFailed 중 하나가 많아야 한 번 발행됩니다.
// 취소된 실행은 종료 이벤트를 발행하지 않습니다.
//
// 업로드된 이미지 URL은 실행이 바뀌어도 유지되므로 Retry는 아직 올리지 않은
// 이미지부터 이어서 진행합니다.
//
// 모든 메서드는 여러 고루틴에서 동시에 호출할 수 있습니다.
type Writer struct {
	id        contract.BroadcastID
	text      string
	images    []contract.ImageSource
	linkTitle string
	linkURL   string
	hasImages bool

	remote    contract.RemoteClient
	progress  contract.ProgressSink
	publisher contract.EventPublisher

	// onFinished 실행이 종료 상태(Sent, Failed, Canceled)에 도달한 직후 잠금 밖에서 호출된다.
	// state 는 전이 시점의 상태이다.
	onFinished func(w *Writer, state contract.WriterState)

	mu            sync.Mutex
	state         contract.WriterState
	current       step
	uploadedURLs  []string
	progressShown bool
	runs          int
	lastErr       error
	result        *contract.Broadcast
	createdAt     time.Time
	updatedAt     time.Time

	// notifyMu 싱크 호출이 상태 전이와 같은 순서로 일어나도록 mu를 넘겨받아 보유한다.
	notifyMu sync.Mutex

	inflight sync.WaitGroup
}

// NewWriter 시작되지 않은 작성기를 생성합니다.
func NewWriter(id contract.BroadcastID, req *contract.SubmitRequest, remote contract.RemoteClient, progress contract.ProgressSink, publisher contract.EventPublisher) *Writer {
	now := time.Now()

	return &Writer{
		id:        id,
		text:      req.Text,
		images:    append([]contract.ImageSource(nil), req.Images...),
		linkTitle: req.LinkTitle,
		linkURL:   req.LinkURL,
		hasImages: len(req.Images) > 0,

		remote:    remote,
		progress:  progress,
		publisher: publisher,

		state:     contract.WriterStateCreated,
		current:   noStep{},
		createdAt: now,
		updatedAt: now,
	}
}

func (w *Writer) ID() contract.BroadcastID {
	return w.id
}

// Start 첫 실행을 시작합니다. 첫 번째 네트워크 요청을 발행한 뒤 바로 반환합니다.
func (w *Writer) Start() error {
	w.mu.Lock()

	switch w.state {
	case contract.WriterStateCreated:
	case contract.WriterStateCanceled:
		w.mu.Unlock()
		return ErrWriterCanceled
	default:
		w.mu.Unlock()
		return ErrAlreadyStarted
	}

	fx := &effects{}
	w.beginRunLocked(fx)
	w.unlockAndApply(fx)

	return nil
}

// Retry 실패한 작성기로 새 실행을 시작합니다.
func (w *Writer) Retry() error {
	w.mu.Lock()

	if w.state != contract.WriterStateFailed {
		w.mu.Unlock()
		return ErrNotRetryable
	}

	fx := &effects{}
	w.beginRunLocked(fx)
	w.unlockAndApply(fx)

	return nil
}

// Cancel 진행 중인 요청을 중단하고 작성기를 Canceled 상태로 만듭니다.
// 이미 게시된 작성기에는 영향이 없으며 여러 번 호출해도 안전합니다.
func (w *Writer) Cancel() {
	w.mu.Lock()

	fx := &effects{}
	w.cancelLocked(fx)
	w.unlockAndApply(fx)
}

// State 현재 상태를 반환합니다.
func (w *Writer) State() contract.WriterState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// UploadedImageURLs 지금까지 업로드된 이미지 URL의 복사본입니다.
func (w *Writer) UploadedImageURLs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.uploadedURLs...)
}

// LastError 마지막 실패 원인입니다. 실패하지 않았다면 nil입니다.
func (w *Writer) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lastErr
}

// Snapshot 현재 상태를 복사해 반환합니다.
func (w *Writer) Snapshot() contract.WriterSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := contract.WriterSnapshot{
		ID:             w.id,
		State:          w.state,
		Text:           w.text,
		LinkTitle:      w.linkTitle,
		LinkURL:        w.linkURL,
		TotalImages:    len(w.images),
		UploadedImages: len(w.uploadedURLs),
		Runs:           w.runs,
		Broadcast:      w.result,
		CreatedAt:      w.createdAt,
		UpdatedAt:      w.updatedAt,
	}
	if w.lastErr != nil {
		s.LastError = w.lastErr.Error()
	}
	return s
}

// wait 발행된 모든 요청 고루틴이 끝날 때까지 기다립니다.
func (w *Writer) wait() {
	w.inflight.Wait()
}

// =============================================================================
// 상태 전이 (w.mu 보유 상태에서 호출)
// =============================================================================

func (w *Writer) beginRunLocked(fx *effects) {
	w.runs++
	w.lastErr = nil

	applog.WithComponentAndFields(writerComponent, applog.Fields{
		"broadcast_id":    w.id,
		"run":             w.runs,
		"total_images":    len(w.images),
		"uploaded_images": len(w.uploadedURLs),
	}).Info("브로드캐스트 작성 시작")

	fx.add(func() {
		w.publisher.Publish(contract.BroadcastWriteStarted{ID: w.id, Writer: w})
	})

	w.resumeLocked(fx)
}

// resumeLocked 다음 이미지를 업로드하거나, 모두 올렸다면 게시 요청을 발행합니다.
func (w *Writer) resumeLocked(fx *effects) {
	if len(w.uploadedURLs) < len(w.images) {
		index := len(w.uploadedURLs)
		image := w.images[index]

		req := newPendingRequest(&w.inflight)
		s := uploadingStep{index: index, req: req}
		w.current = s
		w.setStateLocked(contract.WriterStateUploading)
		w.showProgressLocked(fx, fmt.Sprintf(progressUploadingFormat, index+1, len(w.images)))

		fx.add(func() {
			runRequest(req, func(ctx context.Context) (string, error) {
				return w.remote.UploadImage(ctx, image)
			}, func(url string, err error) {
				w.onImageUploaded(s, url, err)
			})
		})
		return
	}

	text, linkTitle, linkURL := w.text, w.linkTitle, w.linkURL
	imageURLs := append([]string{}, w.uploadedURLs...)

	req := newPendingRequest(&w.inflight)
	s := sendingStep{req: req}
	w.current = s
	w.setStateLocked(contract.WriterStateSending)
	if w.hasImages {
		w.showProgressLocked(fx, progressSending)
	}

	fx.add(func() {
		runRequest(req, func(ctx context.Context) (*contract.Broadcast, error) {
			return w.remote.SendBroadcast(ctx, text, imageURLs, linkTitle, linkURL)
		}, func(b *contract.Broadcast, err error) {
			w.onBroadcastSent(s, b, err)
		})
	})
}

func (w *Writer) onImageUploaded(s uploadingStep, url string, err error) {
	w.mu.Lock()

	if !w.isCurrentLocked(s) {
		w.mu.Unlock()
		return
	}

	fx := &effects{}
	if err != nil {
		w.failLocked(fx, err)
	} else {
		w.uploadedURLs = append(w.uploadedURLs, url)

		applog.WithComponentAndFields(writerComponent, applog.Fields{
			"broadcast_id": w.id,
			"image_index":  s.index,
			"image_url":    url,
		}).Debug("이미지 업로드 완료")

		w.resumeLocked(fx)
	}
	w.unlockAndApply(fx)
}

func (w *Writer) onBroadcastSent(s sendingStep, b *contract.Broadcast, err error) {
	w.mu.Lock()

	if !w.isCurrentLocked(s) {
		w.mu.Unlock()
		return
	}

	fx := &effects{}
	if err == nil && b == nil {
		err = apperrors.New(apperrors.ParsingFailed, "원격 서비스가 빈 브로드캐스트 응답을 반환했습니다")
	}
	if err != nil {
		w.failLocked(fx, err)
	} else {
		w.succeedLocked(fx, b)
	}
	w.unlockAndApply(fx)
}

// isCurrentLocked 완료된 요청이 아직 작성기가 기다리는 요청인지 확인합니다.
// Cancel 이후에 도착한 응답은 여기서 걸러지므로, 통과한 에러는 종류와 상관없이 실패로 처리한다.
func (w *Writer) isCurrentLocked(s step) bool {
	return !w.state.IsTerminal() && w.current == s
}

func (w *Writer) succeedLocked(fx *effects, b *contract.Broadcast) {
	w.result = b
	w.finishLocked(fx, contract.WriterStateSent)

	applog.WithComponentAndFields(writerComponent, applog.Fields{
		"broadcast_id": w.id,
		"remote_id":    b.RemoteID,
		"images":       len(w.uploadedURLs),
	}).Info("브로드캐스트 전송 완료")

	fx.add(func() {
		w.publisher.Publish(contract.BroadcastSent{ID: w.id, Broadcast: b, Writer: w})
	})
}

func (w *Writer) failLocked(fx *effects, err error) {
	w.lastErr = err
	w.finishLocked(fx, contract.WriterStateFailed)

	applog.WithComponentAndFields(writerComponent, applog.Fields{
		"broadcast_id":    w.id,
		"run":             w.runs,
		"uploaded_images": len(w.uploadedURLs),
		"total_images":    len(w.images),
		"error":           err,
	}).Error("브로드캐스트 전송 실패")

	fx.add(func() {
		w.publisher.Publish(contract.BroadcastSendFailed{ID: w.id, Err: err, Writer: w})
	})
}

func (w *Writer) cancelLocked(fx *effects) {
	if w.state == contract.WriterStateSent || w.state == contract.WriterStateCanceled {
		return
	}

	if req := w.current.request(); req != nil {
		req.cancel()
	}
	w.finishLocked(fx, contract.WriterStateCanceled)

	applog.WithComponentAndFields(writerComponent, applog.Fields{
		"broadcast_id":    w.id,
		"uploaded_images": len(w.uploadedURLs),
		"total_images":    len(w.images),
	}).Info("브로드캐스트 작성 취소")
}

func (w *Writer) finishLocked(fx *effects, state contract.WriterState) {
	w.current = noStep{}
	w.setStateLocked(state)
	w.hideProgressLocked(fx)
	fx.finished = true
	fx.state = state
}

func (w *Writer) setStateLocked(state contract.WriterState) {
	w.state = state
	w.updatedAt = time.Now()
}

func (w *Writer) showProgressLocked(fx *effects, text string) {
	w.progressShown = true

	fx.add(func() {
		w.progress.Show(w.id, text)
	})
}

func (w *Writer) hideProgressLocked(fx *effects) {
	if !w.progressShown {
		return
	}
	w.progressShown = false

	fx.add(func() {
		w.progress.Hide(w.id)
	})
}

// =============================================================================
// 싱크 호출
// =============================================================================

// effects 상태 전이 중에 결정된 외부 호출 목록입니다. 잠금을 해제한 뒤 순서대로 실행됩니다.
type effects struct {
	calls    []func()
	finished bool
	state    contract.WriterState
}

func (fx *effects) add(f func()) {
	fx.calls = append(fx.calls, f)
}

// unlockAndApply w.mu를 해제하고 fx를 실행합니다. 호출 시점에 w.mu를 보유하고 있어야 합니다.
func (w *Writer) unlockAndApply(fx *effects) {
	w.notifyMu.Lock()
	w.mu.Unlock()

	func() {
		defer w.notifyMu.Unlock()

		for _, call := range fx.calls {
			w.safeApply(call)
		}
	}()

	if fx.finished && w.onFinished != nil {
		w.onFinished(w, fx.state)
	}
}

func (w *Writer) safeApply(call func()) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(writerComponent, applog.Fields{
				"broadcast_id": w.id,
				"panic":        r,
			}).Error("브로드캐스트 작성기 알림 처리 중 패닉 발생")
		}
	}()

	call()
}
