package contract

import (
	"encoding/json"
	"testing"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBroadcastID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    BroadcastID
		wantErr bool
	}{
		{"1", 1, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseBroadcastID(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input=%q", tt.in)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}
}

func TestWriterState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    WriterState
		name     string
		terminal bool
	}{
		{WriterStateCreated, "created", false},
		{WriterStateUploading, "uploading", false},
		{WriterStateSending, "sending", false},
		{WriterStateSent, "sent", true},
		{WriterStateFailed, "failed", true},
		{WriterStateCanceled, "canceled", true},
		{WriterState(42), "unknown", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.state.String())
		assert.Equal(t, tt.terminal, tt.state.IsTerminal(), tt.name)
	}

	b, err := json.Marshal(WriterSnapshot{ID: 3, State: WriterStateUploading})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"state":"uploading"`)
	assert.Contains(t, string(b), `"id":3`)
}

func TestImageSource_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.png", ImageSource{Path: "/tmp/uploads/a.png"}.Name())
}

func TestSubmitRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     SubmitRequest
		wantErr string
	}{
		{"본문만", SubmitRequest{Text: "hello"}, ""},
		{"이미지만", SubmitRequest{Images: []ImageSource{{Path: "/a.png"}}}, ""},
		{"링크 포함", SubmitRequest{Text: "t", LinkTitle: "blog", LinkURL: "https://example.com"}, ""},
		{"링크 URL만", SubmitRequest{Text: "t", LinkURL: "https://example.com"}, ""},
		{"빈 요청", SubmitRequest{Text: "   "}, "본문 또는 이미지"},
		{"빈 이미지 경로", SubmitRequest{Text: "t", Images: []ImageSource{{Path: "/a.png"}, {Path: " "}}}, "2번째 이미지"},
		{"링크 제목만", SubmitRequest{Text: "t", LinkTitle: "blog"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvents(t *testing.T) {
	t.Parallel()

	events := []Event{
		BroadcastWriteStarted{ID: 1},
		BroadcastSent{ID: 2},
		BroadcastSendFailed{ID: 3},
	}
	kinds := []EventKind{EventWriteStarted, EventSent, EventSendFailed}

	for i, e := range events {
		assert.Equal(t, kinds[i], e.Kind())
		assert.Equal(t, BroadcastID(i+1), e.BroadcastID())
	}
}
