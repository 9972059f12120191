package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/config"
	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func writeFile(t *testing.T, name string, data []byte) contract.ImageSource {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return contract.ImageSource{Path: path}
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate ...func(*config.RemoteConfig)) *Client {
	t.Helper()

	cfg := config.RemoteConfig{
		BaseURL:        srv.URL,
		AccessToken:    testToken,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		MaxUploadBytes: 1024,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

// =============================================================================
// UploadImage
// =============================================================================

func TestClient_UploadImage_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, uploadImagePath, r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		file, header, err := r.FormFile(uploadFieldName)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		assert.Equal(t, "a.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, pngHeader, data)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"url":"https://cdn.example.com/a.png"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	url, err := c.UploadImage(context.Background(), writeFile(t, "a.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", url)
}

func TestClient_UploadImage_DataEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"url":"https://cdn.example.com/b.png"}}`)
	}))
	defer srv.Close()

	url, err := newTestClient(t, srv).UploadImage(context.Background(), writeFile(t, "b.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.png", url)
}

func TestClient_UploadImage_LocalValidation(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	tests := []struct {
		name  string
		image func(t *testing.T) contract.ImageSource
		want  string
	}{
		{"존재하지 않는 파일", func(t *testing.T) contract.ImageSource {
			return contract.ImageSource{Path: filepath.Join(t.TempDir(), "missing.png")}
		}, "열 수 없습니다"},
		{"디렉터리", func(t *testing.T) contract.ImageSource {
			return contract.ImageSource{Path: t.TempDir()}
		}, "디렉터리"},
		{"이미지가 아닌 파일", func(t *testing.T) contract.ImageSource {
			return writeFile(t, "a.txt", []byte("hello world"))
		}, "이미지 파일이 아닙니다"},
		{"크기 초과", func(t *testing.T) contract.ImageSource {
			return writeFile(t, "big.png", append(append([]byte{}, pngHeader...), make([]byte, 2048)...))
		}, "너무 큽니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.UploadImage(context.Background(), tt.image(t))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput), "err=%v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.Zero(t, hits.Load(), "로컬 검증 실패 시 요청을 보내지 않아야 합니다")
}

func TestClient_UploadImage_EmptyURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"url":""}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).UploadImage(context.Background(), writeFile(t, "a.png", pngHeader))
	assert.ErrorIs(t, err, ErrEmptyUploadURL)
}

func TestClient_UploadImage_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantType apperrors.ErrorType
		wantMsg  string
	}{
		{"서버 에러", http.StatusInternalServerError, "", apperrors.Unavailable, "500"},
		{"인증 실패", http.StatusUnauthorized, "", apperrors.Unauthorized, "401"},
		{"잘못된 요청", http.StatusBadRequest, `{"message":"unsupported image"}`, apperrors.InvalidInput, "unsupported image"},
		{"처리 실패", http.StatusConflict, "", apperrors.ExecutionFailed, "409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).UploadImage(context.Background(), writeFile(t, "a.png", pngHeader))
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.UnderlyingType(err), "err=%v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var statusErr *HTTPStatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)

			// POST는 재시도하지 않는다.
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

// =============================================================================
// SendBroadcast
// =============================================================================

func TestClient_SendBroadcast_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sendBroadcastPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["text"])
		assert.Equal(t, []any{"u1", "u2"}, payload["image_urls"])
		assert.Equal(t, "home", payload["link_title"])
		assert.Equal(t, "https://example.com", payload["link_url"])

		_, _ = io.WriteString(w, `{"id":12345,"text":"hello","image_urls":["u1","u2"],"link_title":"home","link_url":"https://example.com","created_at":"2026-01-02T03:04:05Z"}`)
	}))
	defer srv.Close()

	b, err := newTestClient(t, srv).SendBroadcast(context.Background(), "hello", []string{"u1", "u2"}, "home", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "12345", b.RemoteID)
	assert.Equal(t, "hello", b.Text)
	assert.Equal(t, []string{"u1", "u2"}, b.ImageURLs)
	assert.Equal(t, "home", b.LinkTitle)
	assert.Equal(t, "https://example.com", b.LinkURL)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), b.CreatedAt.UTC())
}

func TestClient_SendBroadcast_NilImageURLsSentAsEmptyArray(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"t","image_urls":[]}`, string(body))
		_, _ = io.WriteString(w, `{"data":{"id":"b-1"}}`)
	}))
	defer srv.Close()

	b, err := newTestClient(t, srv).SendBroadcast(context.Background(), "t", nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, "b-1", b.RemoteID)
	assert.Empty(t, b.ImageURLs)
	assert.True(t, b.CreatedAt.IsZero())
}

func TestClient_SendBroadcast_ParsingErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"JSON 아님", `<html>oops</html>`},
		{"ID 누락", `{"text":"t"}`},
		{"잘못된 생성 시각", `{"id":"1","created_at":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).SendBroadcast(context.Background(), "t", nil, "", "")
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ParsingFailed), "err=%v", err)
		})
	}
}

// =============================================================================
// 취소와 시간 초과
// =============================================================================

func TestClient_CanceledRequest(t *testing.T) {
	t.Parallel()

	arrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()

	_, err := newTestClient(t, srv).SendBroadcast(ctx, "t", nil, "", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Canceled), "err=%v", err)
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv, func(cfg *config.RemoteConfig) {
		cfg.Timeout = 50 * time.Millisecond
	})

	_, err := c.SendBroadcast(context.Background(), "t", nil, "", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Timeout), "err=%v", err)
}

// =============================================================================
// CheckHealth (재시도 대상)
// =============================================================================

func TestClient_CheckHealth_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv).CheckHealth(context.Background()))
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_CheckHealth_GivesUp(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).CheckHealth(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	assert.Contains(t, err.Error(), ErrMaxRetriesExceeded.Error())
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_CheckHealth_RetryAfterTooLong(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "3600")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).CheckHealth(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_CheckHealth_NoRetryOnClientError(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).CheckHealth(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.UnderlyingType(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.RemoteConfig{BaseURL: "not a url", Timeout: time.Second})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}
