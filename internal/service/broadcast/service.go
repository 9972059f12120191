package broadcast

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/broadcast-server/internal/config"
	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

// component 브로드캐스트 서비스의 로깅용 컴포넌트 이름
const component = "broadcast.service"

const (
	// defaultQueueSize 작성/취소 요청 채널의 버퍼 크기
	defaultQueueSize = 10

	// shutdownTimeout 종료 시 진행 중인 요청 고루틴을 기다리는 최대 시간
	shutdownTimeout = 30 * time.Second
)

// Service 브로드캐스트 작성기 레지스트리입니다.
//
// 작성기에 단조 증가하는 ID를 부여하고, 실행 중이거나 재시도를 기다리는(Failed)
// 작성기를 보관합니다. 게시에 성공하거나 취소된 작성기는 레지스트리에서 제거됩니다.
//
// 작성기의 시작과 취소는 채널을 통해 단일 이벤트 루프에서 처리됩니다.
type Service struct {
	appConfig *config.AppConfig

	idGenerator contract.IDGenerator

	remote    contract.RemoteClient
	progress  contract.ProgressSink
	publisher contract.EventPublisher

	// imageDir 업로드할 이미지 경로의 기준 디렉터리(절대 경로). 요청의 이미지 경로는 이 안으로 제한된다.
	imageDir string

	// progressReader progress가 진행 문구 조회를 지원하면 설정된다. 없으면 스냅샷의 Progress는 비어 있다.
	progressReader contract.ProgressReader

	// writers 등록된 작성기. runningMu로 보호된다.
	writers map[contract.BroadcastID]*Writer

	writerSubmitC chan *Writer
	writerCancelC chan contract.BroadcastID

	running   bool
	runningMu sync.Mutex
}

// NewService 브로드캐스트 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, idGenerator contract.IDGenerator, remote contract.RemoteClient, progress contract.ProgressSink, publisher contract.EventPublisher) *Service {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if idGenerator == nil {
		panic("IDGenerator는 필수입니다")
	}

	imageDir, err := filepath.Abs(appConfig.Broadcast.ImageDir)
	if err != nil {
		imageDir = filepath.Clean(appConfig.Broadcast.ImageDir)
	}

	progressReader, _ := progress.(contract.ProgressReader)

	return &Service{
		appConfig: appConfig,

		idGenerator: idGenerator,

		remote:    remote,
		progress:  progress,
		publisher: publisher,

		imageDir:       imageDir,
		progressReader: progressReader,

		writers: make(map[contract.BroadcastID]*Writer),

		writerSubmitC: make(chan *Writer, defaultQueueSize),
		writerCancelC: make(chan contract.BroadcastID, defaultQueueSize),
	}
}

// Start 이벤트 루프를 시작합니다. serviceStopCtx가 취소되면 등록된 모든 작성기를 취소하고
// 요청 고루틴이 끝날 때까지 기다린 뒤 serviceStopWG.Done()을 호출합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("브로드캐스트 서비스 시작중...")

	if s.remote == nil || s.progress == nil || s.publisher == nil {
		defer serviceStopWG.Done()
		return apperrors.New(apperrors.Internal, "브로드캐스트 서비스의 의존 객체가 초기화되지 않았습니다")
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("브로드캐스트 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.runEventLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(component).Info("브로드캐스트 서비스 시작됨")

	return nil
}

func (s *Service) runEventLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	for {
		// 한 회차에서 패닉이 나도 루프는 계속 돈다.
		shouldStop := func() bool {
			defer func() {
				if r := recover(); r != nil {
					applog.WithComponentAndFields(component, applog.Fields{
						"panic":            r,
						"submit_queue_len": len(s.writerSubmitC),
						"cancel_queue_len": len(s.writerCancelC),
					}).Error("브로드캐스트 서비스 이벤트 루프에서 패닉이 발생하여 복구했습니다")
				}
			}()

			select {
			case w, ok := <-s.writerSubmitC:
				if !ok {
					return true
				}
				s.handleSubmit(w)

			case id := <-s.writerCancelC:
				s.handleCancel(id)

			case <-serviceStopCtx.Done():
				s.handleStop()
				return true
			}

			return false
		}()

		if shouldStop {
			return
		}
	}
}

func (s *Service) handleSubmit(w *Writer) {
	if err := w.Start(); err != nil {
		// 대기열에 있는 동안 취소된 경우
		applog.WithComponentAndFields(component, applog.Fields{
			"broadcast_id": w.ID(),
			"error":        err,
		}).Debug("브로드캐스트 작성기 시작 생략")
	}
}

func (s *Service) handleCancel(id contract.BroadcastID) {
	s.runningMu.Lock()
	w, exists := s.writers[id]
	delete(s.writers, id)
	s.runningMu.Unlock()

	if !exists {
		applog.WithComponentAndFields(component, applog.Fields{
			"broadcast_id": id,
			"reason":       "not_found",
		}).Warn("브로드캐스트 취소 무시: 등록되지 않은 ID")
		return
	}

	w.Cancel()
}

// handleStop 새 요청을 막고 등록된 작성기를 모두 취소한 뒤 요청 고루틴의 종료를 기다립니다.
func (s *Service) handleStop() {
	applog.WithComponent(component).Info("브로드캐스트 서비스 중지중...")

	s.runningMu.Lock()
	s.running = false
	writers := make([]*Writer, 0, len(s.writers))
	for _, w := range s.writers {
		writers = append(writers, w)
	}
	s.writers = make(map[contract.BroadcastID]*Writer)
	s.runningMu.Unlock()

	// running=false 이후에는 Submit/Cancel이 채널에 쓰지 않는다.
	close(s.writerSubmitC)
	close(s.writerCancelC)

	for _, w := range writers {
		w.Cancel()
	}

	done := make(chan struct{})
	go func() {
		for _, w := range writers {
			w.wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		applog.WithComponentAndFields(component, applog.Fields{
			"timeout": shutdownTimeout,
		}).Warn("브로드캐스트 서비스 강제 종료: 요청 고루틴 종료 대기 시간 초과")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"canceled_writers": len(writers),
	}).Info("브로드캐스트 서비스 중지됨")
}

// Submit 요청을 검증하고 새 작성기를 등록한 뒤 시작을 예약합니다.
// 반환된 ID로 곧바로 Get, Cancel을 호출할 수 있습니다.
func (s *Service) Submit(req *contract.SubmitRequest) (id contract.BroadcastID, err error) {
	if req == nil {
		return 0, ErrInvalidSubmitRequest
	}
	if err := s.validate(req); err != nil {
		return 0, err
	}
	req, err = s.resolveImages(req)
	if err != nil {
		return 0, err
	}

	defer func() {
		if r := recover(); r != nil {
			id, err = 0, newPanicError("브로드캐스트 작성 요청", r)

			applog.WithComponentAndFields(component, applog.Fields{
				"submit_queue_len": len(s.writerSubmitC),
				"panic":            r,
			}).Error("브로드캐스트 작성 요청 실패: 패닉 발생")
		}
	}()

	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return 0, ErrServiceNotRunning
	}

	id = s.idGenerator.Next()
	if _, exists := s.writers[id]; exists {
		return 0, apperrors.Newf(apperrors.Internal, "브로드캐스트 ID가 중복 발급되었습니다 (id=%d)", id)
	}

	w := NewWriter(id, req, s.remote, s.progress, s.publisher)
	w.onFinished = s.writerFinished

	select {
	case s.writerSubmitC <- w:
	default:
		return 0, ErrSubmitQueueFull
	}

	s.writers[id] = w

	applog.WithComponentAndFields(component, applog.Fields{
		"broadcast_id": id,
		"images":       len(req.Images),
		"has_link":     req.LinkURL != "",
	}).Debug("브로드캐스트 작성 요청 접수")

	return id, nil
}

func (s *Service) validate(req *contract.SubmitRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	limits := s.appConfig.Broadcast
	if len(req.Images) > limits.MaxImages {
		return apperrors.Newf(apperrors.InvalidInput, "이미지는 최대 %d개까지 첨부할 수 있습니다 (요청: %d개)", limits.MaxImages, len(req.Images))
	}
	if n := utf8.RuneCountInString(req.Text); n > limits.MaxTextLength {
		return apperrors.Newf(apperrors.InvalidInput, "본문은 최대 %d자까지 작성할 수 있습니다 (요청: %d자)", limits.MaxTextLength, n)
	}
	return nil
}

// resolveImages 이미지 경로를 imageDir 기준의 절대 경로로 바꾼 요청 사본을 반환합니다.
func (s *Service) resolveImages(req *contract.SubmitRequest) (*contract.SubmitRequest, error) {
	resolved := *req
	resolved.Images = make([]contract.ImageSource, 0, len(req.Images))

	for i, img := range req.Images {
		path, ok := resolveImagePath(s.imageDir, img.Path)
		if !ok {
			applog.WithComponentAndFields(component, applog.Fields{
				"image_index": i,
				"image_path":  img.Path,
				"image_dir":   s.imageDir,
			}).Warn("브로드캐스트 작성 요청 거부: 이미지 디렉터리 밖의 경로")

			return nil, apperrors.Newf(apperrors.InvalidInput, "%d번째 이미지 경로가 허용된 이미지 디렉터리를 벗어납니다", i+1)
		}
		resolved.Images = append(resolved.Images, contract.ImageSource{Path: path})
	}

	return &resolved, nil
}

// Cancel 작성기 취소를 예약합니다. 등록되지 않은 ID면 ErrWriterNotFound를 반환합니다.
func (s *Service) Cancel(id contract.BroadcastID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError("브로드캐스트 취소 요청", r)

			applog.WithComponentAndFields(component, applog.Fields{
				"broadcast_id":     id,
				"cancel_queue_len": len(s.writerCancelC),
				"panic":            r,
			}).Error("브로드캐스트 취소 실패: 패닉 발생")
		}
	}()

	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return ErrServiceNotRunning
	}
	if _, exists := s.writers[id]; !exists {
		return ErrWriterNotFound
	}

	select {
	case s.writerCancelC <- id:
		return nil
	default:
		return ErrCancelQueueFull
	}
}

// Retry 실패한 작성기를 다시 실행합니다.
func (s *Service) Retry(id contract.BroadcastID) error {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return ErrServiceNotRunning
	}
	w, exists := s.writers[id]
	s.runningMu.Unlock()

	if !exists {
		return ErrWriterNotFound
	}

	return w.Retry()
}

// Get 등록된 작성기의 현재 상태를 반환합니다.
func (s *Service) Get(id contract.BroadcastID) (contract.WriterSnapshot, error) {
	s.runningMu.Lock()
	w, exists := s.writers[id]
	s.runningMu.Unlock()

	if !exists {
		return contract.WriterSnapshot{}, ErrWriterNotFound
	}

	snapshot := w.Snapshot()
	if s.progressReader != nil {
		snapshot.Progress, _ = s.progressReader.Text(id)
	}
	return snapshot, nil
}

// List 등록된 작성기들의 상태를 ID 순으로 반환합니다.
func (s *Service) List() []contract.WriterSnapshot {
	s.runningMu.Lock()
	writers := make([]*Writer, 0, len(s.writers))
	for _, w := range s.writers {
		writers = append(writers, w)
	}
	s.runningMu.Unlock()

	var progressTexts map[contract.BroadcastID]string
	if s.progressReader != nil {
		progressTexts = s.progressReader.All()
	}

	snapshots := make([]contract.WriterSnapshot, 0, len(writers))
	for _, w := range writers {
		snapshot := w.Snapshot()
		snapshot.Progress = progressTexts[snapshot.ID]
		snapshots = append(snapshots, snapshot)
	}
	slices.SortFunc(snapshots, func(a, b contract.WriterSnapshot) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return snapshots
}

// Health 서비스가 실행 중이면 nil을 반환합니다.
func (s *Service) Health() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return ErrServiceNotRunning
	}
	return nil
}

// writerFinished 작성기 실행이 끝났을 때 호출됩니다. 실패한 작성기는 재시도를 위해 남겨둡니다.
func (s *Service) writerFinished(w *Writer, state contract.WriterState) {
	if state == contract.WriterStateFailed {
		return
	}

	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if cur, exists := s.writers[w.ID()]; exists && cur == w {
		delete(s.writers, w.ID())
	}
}
