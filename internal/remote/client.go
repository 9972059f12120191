package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/config"
	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/darkkaiser/broadcast-server/internal/pkg/version"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"
)

const (
	uploadImagePath   = "/api/v1/images"
	sendBroadcastPath = "/api/v1/broadcasts"
	healthPath        = "/api/v1/health"

	// uploadFieldName multipart 요청에서 이미지 파일이 담기는 필드 이름
	uploadFieldName = "image"
)

// Client contract.RemoteClient 의 HTTP 구현체입니다.
//
// 업로드 응답은 {"url": "..."}, 게시 응답은 {"id": ..., "text": ..., "image_urls": [...],
// "link_title": ..., "link_url": ..., "created_at": "RFC3339"} 형태를 기대합니다.
// 응답이 {"data": {...}} 로 한 번 감싸져 있어도 해석합니다.
type Client struct {
	baseURL     *url.URL
	accessToken string

	maxUploadBytes int64

	fetcher Fetcher
}

var _ contract.RemoteClient = (*Client)(nil)

// NewClient 설정값으로 원격 클라이언트를 생성합니다.
func NewClient(cfg config.RemoteConfig) (*Client, error) {
	base := NewHTTPFetcher(cfg.Timeout)
	return newClient(cfg, NewRetryFetcher(base, cfg.MaxRetries, cfg.RetryDelay, 0))
}

func newClient(cfg config.RemoteConfig, fetcher Fetcher) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperrors.Newf(apperrors.InvalidInput, "원격 서비스 주소가 올바르지 않습니다 (base_url=%q)", cfg.BaseURL)
	}

	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.DefaultMaxUploadBytes
	}

	return &Client{
		baseURL:        u,
		accessToken:    cfg.AccessToken,
		maxUploadBytes: maxUploadBytes,
		fetcher:        fetcher,
	}, nil
}

// UploadImage 이미지 파일 하나를 multipart/form-data로 업로드하고 접근 URL을 반환합니다.
func (c *Client) UploadImage(ctx context.Context, image contract.ImageSource) (string, error) {
	body, contentType, err := c.newUploadBody(image)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, uploadImagePath, body, contentType)
	if err != nil {
		return "", err
	}

	respBody, err := c.do(ctx, req, "이미지 업로드", http.StatusOK, http.StatusCreated)
	if err != nil {
		return "", err
	}

	result := unwrapData(respBody)
	imageURL := strings.TrimSpace(result.Get("url").String())
	if imageURL == "" {
		return "", ErrEmptyUploadURL
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"image":     image.Name(),
		"image_url": imageURL,
	}).Debug("이미지 업로드 성공")

	return imageURL, nil
}

// newUploadBody 이미지를 읽어 multipart 본문을 만듭니다. 재전송할 수 있도록 메모리에 올립니다.
func (c *Client) newUploadBody(image contract.ImageSource) ([]byte, string, error) {
	f, err := os.Open(image.Path)
	if err != nil {
		return nil, "", apperrors.Wrapf(err, apperrors.InvalidInput, "업로드할 이미지 파일을 열 수 없습니다 (path=%s)", image.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, "", apperrors.Wrapf(err, apperrors.System, "이미지 파일 정보를 읽을 수 없습니다 (path=%s)", image.Path)
	}
	if info.IsDir() {
		return nil, "", apperrors.Newf(apperrors.InvalidInput, "이미지 경로가 디렉터리입니다 (path=%s)", image.Path)
	}
	if info.Size() > c.maxUploadBytes {
		return nil, "", apperrors.Newf(apperrors.InvalidInput, "이미지 파일이 너무 큽니다 (size=%d, limit=%d)", info.Size(), c.maxUploadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, c.maxUploadBytes+1))
	if err != nil {
		return nil, "", apperrors.Wrapf(err, apperrors.System, "이미지 파일을 읽을 수 없습니다 (path=%s)", image.Path)
	}
	if int64(len(data)) > c.maxUploadBytes {
		return nil, "", apperrors.Newf(apperrors.InvalidInput, "이미지 파일이 너무 큽니다 (limit=%d)", c.maxUploadBytes)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, "", apperrors.Newf(apperrors.InvalidInput, "이미지 파일이 아닙니다 (path=%s, mime=%s)", image.Path, mtype.String())
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, image.Name()))
	header.Set("Content-Type", mtype.String())

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.Internal, "업로드 요청 본문 생성에 실패했습니다")
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.Internal, "업로드 요청 본문 생성에 실패했습니다")
	}
	if err := w.Close(); err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.Internal, "업로드 요청 본문 생성에 실패했습니다")
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

type sendBroadcastPayload struct {
	Text      string   `json:"text"`
	ImageURLs []string `json:"image_urls"`
	LinkTitle string   `json:"link_title,omitempty"`
	LinkURL   string   `json:"link_url,omitempty"`
}

// SendBroadcast 본문, 업로드된 이미지 URL, 링크로 브로드캐스트를 게시합니다.
func (c *Client) SendBroadcast(ctx context.Context, text string, imageURLs []string, linkTitle, linkURL string) (*contract.Broadcast, error) {
	if imageURLs == nil {
		imageURLs = []string{}
	}

	body, err := json.Marshal(sendBroadcastPayload{
		Text:      text,
		ImageURLs: imageURLs,
		LinkTitle: linkTitle,
		LinkURL:   linkURL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "브로드캐스트 요청 본문 생성에 실패했습니다")
	}

	req, err := c.newRequest(ctx, http.MethodPost, sendBroadcastPath, body, "application/json")
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, req, "브로드캐스트 게시", http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	return parseBroadcast(respBody)
}

// CheckHealth 원격 서비스의 상태 확인 엔드포인트를 호출합니다. 일시적 오류는 재시도됩니다.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, healthPath, nil, "")
	if err != nil {
		return err
	}

	_, err = c.do(ctx, req, "상태 확인", http.StatusOK, http.StatusNoContent)
	return err
}

func parseBroadcast(body []byte) (*contract.Broadcast, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.New(apperrors.ParsingFailed, "브로드캐스트 게시 응답이 올바른 JSON이 아닙니다")
	}

	result := unwrapData(body)

	id := result.Get("id")
	if !id.Exists() || id.String() == "" {
		return nil, ErrMissingBroadcastID
	}

	b := &contract.Broadcast{
		RemoteID:  id.String(),
		Text:      result.Get("text").String(),
		LinkTitle: result.Get("link_title").String(),
		LinkURL:   result.Get("link_url").String(),
	}
	for _, u := range result.Get("image_urls").Array() {
		b.ImageURLs = append(b.ImageURLs, u.String())
	}
	if createdAt := result.Get("created_at"); createdAt.Exists() {
		t, err := time.Parse(time.RFC3339, createdAt.String())
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ParsingFailed, "브로드캐스트 생성 시각을 해석할 수 없습니다 (created_at=%q)", createdAt.String())
		}
		b.CreatedAt = t
	}

	return b, nil
}

// unwrapData {"data": {...}} 형태의 응답이면 data를, 아니면 최상위 객체를 반환합니다.
func unwrapData(body []byte) gjson.Result {
	if data := gjson.GetBytes(body, "data"); data.IsObject() {
		return data
	}
	return gjson.ParseBytes(body)
}

// CloseIdleConnections 서버 종료 시 남아 있는 유휴 커넥션을 정리합니다.
func (c *Client) CloseIdleConnections() {
	if closer, ok := c.fetcher.(idleConnectionCloser); ok {
		closer.CloseIdleConnections()
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "원격 서비스 요청 생성에 실패했습니다")
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", config.AppName, version.Get().Version))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// do 요청을 전송하고 허용된 상태 코드의 응답 본문을 반환합니다.
func (c *Client) do(ctx context.Context, req *http.Request, op string, allowed ...int) ([]byte, error) {
	start := time.Now()

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err, op)
	}

	if err := checkResponseStatus(resp, allowed...); err != nil {
		drainAndCloseBody(resp.Body)

		applog.WithComponentAndFields(component, applog.Fields{
			"op":          op,
			"url":         redactURL(req.URL),
			"status_code": resp.StatusCode,
			"elapsed":     time.Since(start).String(),
		}).Warn("원격 서비스 요청 실패")

		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyError(ctx, err, op)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"op":          op,
		"url":         redactURL(req.URL),
		"status_code": resp.StatusCode,
		"elapsed":     time.Since(start).String(),
	}).Debug("원격 서비스 요청 완료")

	return body, nil
}
