package broadcast

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/config"
	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	"github.com/darkkaiser/broadcast-server/internal/service/contract/mocks"
	"github.com/darkkaiser/broadcast-server/internal/service/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testImageDir = "/srv/broadcast/images"

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Broadcast: config.BroadcastConfig{
			MaxImages:     3,
			MaxTextLength: 10,
			ImageDir:      testImageDir,
		},
	}
}

// startService 주어진 의존 객체로 서비스를 시작하고, 테스트 종료 시 중지합니다.
func startService(t *testing.T, remote contract.RemoteClient, progress contract.ProgressSink, publisher contract.EventPublisher) *Service {
	t.Helper()

	s := NewService(newTestConfig(), NewIDGenerator(), remote, progress, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return s
}

type serviceFixture struct {
	*writerFixture

	service *Service
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
}

// newRunningService 시작된 서비스를 만들고, 테스트 종료 시 서비스를 중지합니다.
func newRunningService(t *testing.T) *serviceFixture {
	t.Helper()

	f := newWriterFixture()
	s := NewService(newTestConfig(), NewIDGenerator(), f.remote, f.progress, f.publisher)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	sf := &serviceFixture{writerFixture: f, service: s, cancel: cancel, wg: wg}
	t.Cleanup(sf.stop)
	return sf
}

func (f *serviceFixture) stop() {
	f.cancel()
	f.wg.Wait()
}

func waitGone(t *testing.T, s *Service, id contract.BroadcastID) {
	t.Helper()

	require.Eventually(t, func() bool {
		_, err := s.Get(id)
		return apperrors.Is(err, apperrors.NotFound)
	}, testTimeout, 5*time.Millisecond)
}

// =============================================================================
// 생명주기
// =============================================================================

func TestNewService_PanicsWithoutIDGenerator(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewService(newTestConfig(), nil, nil, nil, nil)
	})
}

func TestNewService_PanicsWithoutConfig(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "AppConfig는 필수입니다", func() {
		NewService(nil, NewIDGenerator(), nil, nil, nil)
	})
}

func TestService_Start_MissingDependencies(t *testing.T) {
	t.Parallel()

	s := NewService(newTestConfig(), NewIDGenerator(), nil, nil, nil)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	err := s.Start(context.Background(), wg)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Internal))

	// 실패한 Start도 WaitGroup을 해제해야 한다.
	wg.Wait()
	assert.ErrorIs(t, s.Health(), ErrServiceNotRunning)
}

func TestService_Start_Twice(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, f.service.Start(context.Background(), wg))
	wg.Wait()

	assert.NoError(t, f.service.Health())
}

func TestService_NotRunning(t *testing.T) {
	t.Parallel()

	f := newWriterFixture()
	s := NewService(newTestConfig(), NewIDGenerator(), f.remote, f.progress, f.publisher)

	_, err := s.Submit(&contract.SubmitRequest{Text: "t"})
	assert.ErrorIs(t, err, ErrServiceNotRunning)
	assert.ErrorIs(t, s.Cancel(1), ErrServiceNotRunning)
	assert.ErrorIs(t, s.Retry(1), ErrServiceNotRunning)
	assert.ErrorIs(t, s.Health(), ErrServiceNotRunning)
	assert.Empty(t, s.List())
}

// =============================================================================
// Submit
// =============================================================================

func TestService_Submit_Validation(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	tests := []struct {
		name string
		req  *contract.SubmitRequest
	}{
		{"nil 요청", nil},
		{"본문과 이미지 모두 없음", &contract.SubmitRequest{Text: "   "}},
		{"이미지 개수 초과", &contract.SubmitRequest{Images: images("a", "b", "c", "d")}},
		{"본문 길이 초과", &contract.SubmitRequest{Text: "가나다라마바사아자차카"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Submit(tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput), "err=%v", err)
		})
	}

	assert.Empty(t, f.service.List())
	f.remote.expectNoCall(t)
}

func TestService_Submit_RegistersAndRemovesAfterSent(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	id1, err := f.service.Submit(&contract.SubmitRequest{Text: "first"})
	require.NoError(t, err)
	id2, err := f.service.Submit(&contract.SubmitRequest{Text: "second", Images: images("a")})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	list := f.service.List()
	require.Len(t, list, 2)
	assert.Equal(t, id1, list[0].ID)
	assert.Equal(t, id2, list[1].ID)

	snap, err := f.service.Get(id2)
	require.NoError(t, err)
	assert.Equal(t, "second", snap.Text)
	assert.Equal(t, 1, snap.TotalImages)

	calls := map[string]*remoteCall{}
	for range 2 {
		c := f.remote.next(t)
		calls[c.kind] = c
	}
	require.Contains(t, calls, "send")
	require.Contains(t, calls, "upload")

	calls["send"].sent(&contract.Broadcast{RemoteID: "r1"})
	waitGone(t, f.service, id1)

	calls["upload"].uploaded("u")
	f.remote.next(t).sent(&contract.Broadcast{RemoteID: "r2"})
	waitGone(t, f.service, id2)

	assert.Empty(t, f.service.List())
}

// =============================================================================
// Cancel / Retry
// =============================================================================

func TestService_Cancel(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	assert.ErrorIs(t, f.service.Cancel(999), ErrWriterNotFound)

	id, err := f.service.Submit(&contract.SubmitRequest{Images: images("a", "b")})
	require.NoError(t, err)

	up := f.remote.next(t)
	require.NoError(t, f.service.Cancel(id))

	<-up.ctx.Done()
	waitGone(t, f.service, id)
	assert.ErrorIs(t, f.service.Cancel(id), ErrWriterNotFound)

	assert.Equal(t, contract.EventWriteStarted, f.publisher.next(t).Kind())
	f.publisher.expectNoEvent(t)
}

func TestService_FailedWriterIsKeptForRetry(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	id, err := f.service.Submit(&contract.SubmitRequest{Text: "t"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Retry(id+1), ErrWriterNotFound)

	f.remote.next(t).fail(apperrors.New(apperrors.Unavailable, "down"))
	require.Eventually(t, func() bool {
		snap, err := f.service.Get(id)
		return err == nil && snap.State == contract.WriterStateFailed
	}, testTimeout, 5*time.Millisecond)

	require.NoError(t, f.service.Retry(id))
	assert.ErrorIs(t, f.service.Retry(id), ErrNotRetryable)

	f.remote.next(t).sent(&contract.Broadcast{})
	waitGone(t, f.service, id)

	var kinds []contract.EventKind
	for range 4 {
		kinds = append(kinds, f.publisher.next(t).Kind())
	}
	assert.Equal(t, []contract.EventKind{
		contract.EventWriteStarted,
		contract.EventSendFailed,
		contract.EventWriteStarted,
		contract.EventSent,
	}, kinds)
}

func TestService_CancelFailedWriterDiscardsIt(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	id, err := f.service.Submit(&contract.SubmitRequest{Text: "t"})
	require.NoError(t, err)
	f.remote.next(t).fail(apperrors.New(apperrors.Unavailable, "down"))
	require.Eventually(t, func() bool {
		snap, err := f.service.Get(id)
		return err == nil && snap.State == contract.WriterStateFailed
	}, testTimeout, 5*time.Millisecond)

	require.NoError(t, f.service.Cancel(id))
	waitGone(t, f.service, id)
}

func TestService_CanceledErrorWithoutCancelKeepsWriterForRetry(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	id, err := f.service.Submit(&contract.SubmitRequest{Text: "t"})
	require.NoError(t, err)
	assert.Equal(t, contract.EventWriteStarted, f.publisher.next(t).Kind())

	// 원격 클라이언트가 Canceled 타입 에러를 돌려주더라도 Cancel을 호출하지 않았다면 실패이다.
	f.remote.next(t).fail(apperrors.New(apperrors.Canceled, "upstream aborted"))
	assert.Equal(t, contract.EventSendFailed, f.publisher.next(t).Kind())

	snap, err := f.service.Get(id)
	require.NoError(t, err)
	assert.Equal(t, contract.WriterStateFailed, snap.State)
	assert.Contains(t, snap.LastError, "upstream aborted")

	require.NoError(t, f.service.Retry(id))
	assert.Equal(t, contract.EventWriteStarted, f.publisher.next(t).Kind())
	f.remote.next(t).sent(&contract.Broadcast{RemoteID: "r-1"})
	assert.Equal(t, contract.EventSent, f.publisher.next(t).Kind())
	waitGone(t, f.service, id)
}

func TestService_RetryUploadsOnlyMissingImages(t *testing.T) {
	t.Parallel()

	pathA := filepath.Join(testImageDir, "a.png")
	pathB := filepath.Join(testImageDir, "b.png")

	remote := &mocks.MockRemoteClient{}
	remote.On("UploadImage", mock.Anything, contract.ImageSource{Path: pathA}).Return("https://cdn/a", nil).Once()
	remote.On("UploadImage", mock.Anything, contract.ImageSource{Path: pathB}).Return("", apperrors.New(apperrors.Unavailable, "upload failed")).Once()
	remote.On("UploadImage", mock.Anything, contract.ImageSource{Path: pathB}).Return("https://cdn/b", nil).Once()
	remote.On("SendBroadcast", mock.Anything, "t", []string{"https://cdn/a", "https://cdn/b"}, "", "").
		Return(&contract.Broadcast{RemoteID: "r-1"}, nil).Once()

	publisher := newRecordingPublisher()
	s := startService(t, remote, &recordingProgress{}, publisher)

	id, err := s.Submit(&contract.SubmitRequest{Text: "t", Images: images("a.png", "b.png")})
	require.NoError(t, err)

	assert.Equal(t, contract.EventWriteStarted, publisher.next(t).Kind())
	assert.Equal(t, contract.EventSendFailed, publisher.next(t).Kind())

	snap, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.UploadedImages)

	require.NoError(t, s.Retry(id))
	assert.Equal(t, contract.EventWriteStarted, publisher.next(t).Kind())
	assert.Equal(t, contract.EventSent, publisher.next(t).Kind())
	waitGone(t, s, id)

	remote.AssertExpectations(t)
	remote.AssertNumberOfCalls(t, "UploadImage", 3)
	remote.AssertNumberOfCalls(t, "SendBroadcast", 1)
}

// =============================================================================
// 진행 상태
// =============================================================================

func TestService_SnapshotsReadProgressFromTracker(t *testing.T) {
	t.Parallel()

	f := newWriterFixture()
	tracker := progress.NewTracker()
	s := startService(t, f.remote, tracker, f.publisher)

	id, err := s.Submit(&contract.SubmitRequest{Images: images("a.png", "b.png")})
	require.NoError(t, err)

	f.remote.next(t).uploaded("https://cdn/a")
	upB := f.remote.next(t)

	snap, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "이미지 업로드 중 (2/2)", snap.Progress)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "이미지 업로드 중 (2/2)", list[0].Progress)

	upB.fail(apperrors.New(apperrors.Unavailable, "down"))
	require.Eventually(t, func() bool {
		snap, err := s.Get(id)
		return err == nil && snap.State == contract.WriterStateFailed && snap.Progress == ""
	}, testTimeout, 5*time.Millisecond)

	_, shown := tracker.Text(id)
	assert.False(t, shown)
}

func TestService_SnapshotsWithoutProgressReader(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	id, err := f.service.Submit(&contract.SubmitRequest{Images: images("a.png")})
	require.NoError(t, err)
	f.remote.next(t)

	snap, err := f.service.Get(id)
	require.NoError(t, err)
	assert.Empty(t, snap.Progress)
	assert.Equal(t, []string{fmt.Sprintf("show:%d:이미지 업로드 중 (1/1)", id)}, f.progress.Ops())
}

// =============================================================================
// 이미지 경로
// =============================================================================

func TestService_Submit_ImagePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		wantPath string
	}{
		{"상대 경로", "a.png", filepath.Join(testImageDir, "a.png")},
		{"하위 디렉터리", "2024/01/a.png", filepath.Join(testImageDir, "2024", "01", "a.png")},
		{"디렉터리 내부 절대 경로", filepath.Join(testImageDir, "b.png"), filepath.Join(testImageDir, "b.png")},
		{"정리 후 내부에 남는 경로", "x/../c.png", filepath.Join(testImageDir, "c.png")},
		{"상위 디렉터리 탈출", "../secret.png", ""},
		{"여러 단계 탈출", "a/../../../etc/passwd", ""},
		{"외부 절대 경로", "/etc/passwd", ""},
		{"접두사만 같은 형제 디렉터리", testImageDir + "-other/a.png", ""},
		{"디렉터리 자체", ".", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newRunningService(t)

			id, err := f.service.Submit(&contract.SubmitRequest{Images: images(tt.path)})
			if tt.wantPath == "" {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.InvalidInput), "err=%v", err)

				var appErr *apperrors.AppError
				require.True(t, apperrors.As(err, &appErr))
				assert.Equal(t, "1번째 이미지 경로가 허용된 이미지 디렉터리를 벗어납니다", appErr.Message())
				assert.Empty(t, f.service.List())
				f.remote.expectNoCall(t)
				return
			}

			require.NoError(t, err)
			call := f.remote.next(t)
			assert.Equal(t, tt.wantPath, call.image.Path)

			require.NoError(t, f.service.Cancel(id))
			waitGone(t, f.service, id)
		})
	}
}

func TestService_Submit_DoesNotModifyRequest(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	req := &contract.SubmitRequest{Images: images("a.png")}
	_, err := f.service.Submit(req)
	require.NoError(t, err)
	f.remote.next(t)

	assert.Equal(t, "a.png", req.Images[0].Path)
}

// =============================================================================
// 종료
// =============================================================================

func TestService_StopCancelsLiveWriters(t *testing.T) {
	t.Parallel()

	f := newRunningService(t)

	id, err := f.service.Submit(&contract.SubmitRequest{Images: images("a")})
	require.NoError(t, err)
	up := f.remote.next(t)

	f.stop()

	select {
	case <-up.ctx.Done():
	default:
		t.Fatal("종료 시 진행 중인 요청이 취소되어야 합니다")
	}

	_, err = f.service.Get(id)
	assert.ErrorIs(t, err, ErrWriterNotFound)
	assert.ErrorIs(t, f.service.Health(), ErrServiceNotRunning)

	_, err = f.service.Submit(&contract.SubmitRequest{Text: "t"})
	assert.ErrorIs(t, err, ErrServiceNotRunning)
}

func TestService_IDCollision(t *testing.T) {
	t.Parallel()

	f := newWriterFixture()
	idGen := &mocks.MockIDGenerator{}
	idGen.On("Next").Return(contract.BroadcastID(5))

	s := NewService(newTestConfig(), idGen, f.remote, f.progress, f.publisher)
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))
	defer func() {
		cancel()
		wg.Wait()
	}()

	_, err := s.Submit(&contract.SubmitRequest{Images: images("a")})
	require.NoError(t, err)
	f.remote.next(t)

	_, err = s.Submit(&contract.SubmitRequest{Text: "t"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Internal))
}
