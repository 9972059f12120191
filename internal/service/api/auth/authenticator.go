// Package auth API 요청의 App Key 인증을 담당합니다.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/darkkaiser/broadcast-server/internal/config"
	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	"github.com/darkkaiser/broadcast-server/internal/service/api/httputil"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

// Authenticator 설정 파일에 등록된 App Key로 요청을 인증합니다.
//
// 키 원문 대신 SHA-256 해시만 보관하며, 비교는 상수 시간으로 수행합니다.
// 생성 후에는 읽기 전용이므로 여러 고루틴에서 동시에 호출해도 안전합니다.
type Authenticator struct {
	keyHashes [][sha256.Size]byte
}

// NewAuthenticator 설정의 api.app_keys 로 Authenticator를 생성합니다.
func NewAuthenticator(appConfig *config.AppConfig) *Authenticator {
	if appConfig == nil {
		panic(constants.PanicMsgAppConfigRequired)
	}

	hashes := make([][sha256.Size]byte, 0, len(appConfig.API.AppKeys))
	for _, key := range appConfig.API.AppKeys {
		hashes = append(hashes, sha256.Sum256([]byte(key)))
	}

	return &Authenticator{keyHashes: hashes}
}

// Authenticate appKey가 등록된 키 중 하나와 일치하는지 확인합니다.
// 실패 시 401 Unauthorized 에러를 반환합니다.
func (a *Authenticator) Authenticate(appKey string) error {
	if appKey == "" {
		return httputil.NewUnauthorizedError(constants.ErrMsgAppKeyRequired)
	}

	given := sha256.Sum256([]byte(appKey))

	matched := 0
	for i := range a.keyHashes {
		// 일치 여부와 상관없이 모든 키와 비교한다.
		matched |= subtle.ConstantTimeCompare(given[:], a.keyHashes[i][:])
	}
	if matched == 1 {
		return nil
	}

	applog.WithComponentAndFields(constants.ComponentMiddlewareAuth, applog.Fields{
		"received_app_key": applog.MaskSensitiveData(appKey),
	}).Warn("APP_KEY 불일치")

	return httputil.NewUnauthorizedError(constants.ErrMsgInvalidAppKey)
}
