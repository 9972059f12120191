package broadcast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

// =============================================================================
// fakeRemote: 테스트가 응답 시점을 직접 제어하는 원격 서비스
// =============================================================================

type remoteCall struct {
	kind      string // "upload" | "send"
	image     contract.ImageSource
	text      string
	imageURLs []string
	linkTitle string
	linkURL   string

	ctx   context.Context
	reply chan remoteReply
}

type remoteReply struct {
	url       string
	broadcast *contract.Broadcast
	err       error
	panicWith any
}

func (c *remoteCall) uploaded(url string)        { c.reply <- remoteReply{url: url} }
func (c *remoteCall) sent(b *contract.Broadcast) { c.reply <- remoteReply{broadcast: b} }
func (c *remoteCall) fail(err error)             { c.reply <- remoteReply{err: err} }
func (c *remoteCall) panics(v any)               { c.reply <- remoteReply{panicWith: v} }

type fakeRemote struct {
	calls chan *remoteCall
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(chan *remoteCall, 32)}
}

func (f *fakeRemote) UploadImage(ctx context.Context, image contract.ImageSource) (string, error) {
	r, err := f.do(ctx, &remoteCall{kind: "upload", image: image})
	return r.url, err
}

func (f *fakeRemote) SendBroadcast(ctx context.Context, text string, imageURLs []string, linkTitle, linkURL string) (*contract.Broadcast, error) {
	r, err := f.do(ctx, &remoteCall{kind: "send", text: text, imageURLs: imageURLs, linkTitle: linkTitle, linkURL: linkURL})
	return r.broadcast, err
}

func (f *fakeRemote) do(ctx context.Context, c *remoteCall) (remoteReply, error) {
	c.ctx = ctx
	c.reply = make(chan remoteReply, 1)
	f.calls <- c

	select {
	case r := <-c.reply:
		if r.panicWith != nil {
			panic(r.panicWith)
		}
		return r, r.err
	case <-ctx.Done():
		return remoteReply{}, ctx.Err()
	}
}

// next 다음 원격 호출을 기다립니다.
func (f *fakeRemote) next(t *testing.T) *remoteCall {
	t.Helper()

	select {
	case c := <-f.calls:
		return c
	case <-time.After(testTimeout):
		require.FailNow(t, "원격 호출이 발생하지 않았습니다")
		return nil
	}
}

// expectNoCall 짧은 시간 동안 원격 호출이 없음을 확인합니다.
func (f *fakeRemote) expectNoCall(t *testing.T) {
	t.Helper()

	select {
	case c := <-f.calls:
		require.FailNowf(t, "예상하지 못한 원격 호출", "kind=%s", c.kind)
	case <-time.After(50 * time.Millisecond):
	}
}

// =============================================================================
// recordingProgress / recordingPublisher
// =============================================================================

type recordingProgress struct {
	mu  sync.Mutex
	ops []string
}

func (p *recordingProgress) Show(id contract.BroadcastID, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, fmt.Sprintf("show:%d:%s", id, text))
}

func (p *recordingProgress) Hide(id contract.BroadcastID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, fmt.Sprintf("hide:%d", id))
}

func (p *recordingProgress) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ops...)
}

type recordingPublisher struct {
	events chan contract.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan contract.Event, 64)}
}

func (p *recordingPublisher) Publish(e contract.Event) {
	p.events <- e
}

func (p *recordingPublisher) next(t *testing.T) contract.Event {
	t.Helper()

	select {
	case e := <-p.events:
		return e
	case <-time.After(testTimeout):
		require.FailNow(t, "이벤트가 발행되지 않았습니다")
		return nil
	}
}

func (p *recordingPublisher) expectNoEvent(t *testing.T) {
	t.Helper()

	select {
	case e := <-p.events:
		require.FailNowf(t, "예상하지 못한 이벤트", "kind=%s", e.Kind())
	case <-time.After(50 * time.Millisecond):
	}
}

// =============================================================================
// 작성기 생성
// =============================================================================

type writerFixture struct {
	remote    *fakeRemote
	progress  *recordingProgress
	publisher *recordingPublisher
}

func newWriterFixture() *writerFixture {
	return &writerFixture{
		remote:    newFakeRemote(),
		progress:  &recordingProgress{},
		publisher: newRecordingPublisher(),
	}
}

func (f *writerFixture) newWriter(id contract.BroadcastID, req *contract.SubmitRequest) *Writer {
	return NewWriter(id, req, f.remote, f.progress, f.publisher)
}

func images(paths ...string) []contract.ImageSource {
	out := make([]contract.ImageSource, 0, len(paths))
	for _, p := range paths {
		out = append(out, contract.ImageSource{Path: p})
	}
	return out
}

func waitState(t *testing.T, w *Writer, want contract.WriterState) {
	t.Helper()

	require.Eventually(t, func() bool {
		return w.State() == want
	}, testTimeout, 5*time.Millisecond, "state=%s, want=%s", w.State(), want)
}
