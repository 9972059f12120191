// Package config 브로드캐스트 서버의 설정 파일을 로드하고 검증합니다.
//
// 설정은 다음 순서로 병합되며 뒤의 값이 앞의 값을 덮어씁니다.
//
//  1. newDefaultConfig 가 반환하는 기본값
//  2. JSON 설정 파일 (기본: broadcast-server.json)
//  3. BROADCAST_ 접두어 환경 변수 (__ 는 계층 구분자, 예: BROADCAST_REMOTE__ACCESS_TOKEN)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션 식별자입니다. 로그 파일명과 기본 설정 파일명에 사용됩니다.
	AppName string = "broadcast-server"

	// DefaultFilename 실행 인자로 경로가 주어지지 않았을 때 읽는 설정 파일입니다.
	DefaultFilename = AppName + ".json"

	envPrefix = "BROADCAST_"
)

const (
	DefaultRemoteTimeout  = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultMaxImages      = 10
	DefaultMaxTextLength  = 5000
	DefaultImageDir       = "images"
	DefaultListenPort     = 2443
	DefaultMaxUploadBytes = 10 << 20
)

// AppConfig 설정 파일의 최상위 구조체입니다.
type AppConfig struct {
	Debug     bool            `json:"debug"`
	Remote    RemoteConfig    `json:"remote"`
	Broadcast BroadcastConfig `json:"broadcast"`
	API       APIConfig       `json:"api"`
}

// RemoteConfig 이미지 업로드와 브로드캐스트 전송을 받는 원격 서비스 접속 정보입니다.
type RemoteConfig struct {
	BaseURL     string        `json:"base_url" validate:"required,http_url"`
	AccessToken string        `json:"access_token" validate:"required"`
	Timeout     time.Duration `json:"timeout" validate:"gt=0"`

	// 재시도는 멱등하지 않은 업로드/전송에는 적용되지 않고 조회 요청에만 적용된다.
	MaxRetries int           `json:"max_retries" validate:"min=0,max=10"`
	RetryDelay time.Duration `json:"retry_delay" validate:"gte=0"`

	MaxUploadBytes int64 `json:"max_upload_bytes" validate:"gt=0"`
}

// BroadcastConfig 브로드캐스트 작성 요청의 제한값입니다.
type BroadcastConfig struct {
	MaxImages     int `json:"max_images" validate:"min=1,max=100"`
	MaxTextLength int `json:"max_text_length" validate:"min=1"`

	// ImageDir 업로드할 이미지를 읽을 수 있는 디렉터리. 요청의 이미지 경로는 이 디렉터리 기준으로
	// 해석되며, 디렉터리 밖을 가리키는 경로는 거부된다.
	ImageDir string `json:"image_dir" validate:"required"`
}

// APIConfig REST API 서버 설정입니다.
type APIConfig struct {
	ListenPort   int      `json:"listen_port" validate:"min=1,max=65535"`
	AppKeys      []string `json:"app_keys" validate:"min=1,unique,dive,required"`
	AllowOrigins []string `json:"allow_origins" validate:"min=1,dive,cors_origin"`
}

func newDefaultConfig() AppConfig {
	return AppConfig{
		Remote: RemoteConfig{
			Timeout:        DefaultRemoteTimeout,
			MaxRetries:     DefaultMaxRetries,
			RetryDelay:     DefaultRetryDelay,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Broadcast: BroadcastConfig{
			MaxImages:     DefaultMaxImages,
			MaxTextLength: DefaultMaxTextLength,
			ImageDir:      DefaultImageDir,
		},
		API: APIConfig{
			ListenPort:   DefaultListenPort,
			AllowOrigins: []string{"*"},
		},
	}
}

// VerifyRecommendations 실행은 가능하지만 권장하지 않는 설정에 대한 경고 문구를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.API.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.API.ListenPort))
	}
	if strings.HasPrefix(c.Remote.BaseURL, "http://") {
		warnings = append(warnings, "원격 서비스 주소(remote.base_url)가 암호화되지 않은 http 입니다. 액세스 토큰이 평문으로 전송됩니다")
	}
	if len(c.API.AllowOrigins) == 1 && c.API.AllowOrigins[0] == "*" {
		warnings = append(warnings, "CORS 허용 도메인(api.allow_origins)이 와일드카드(*)로 설정되어 있습니다")
	}

	return warnings
}

// Load 기본 설정 파일을 읽습니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile filename 의 설정 파일을 읽어 검증된 AppConfig 를 반환합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(newDefaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	if err := k.Load(env.Provider(envPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	}

	var appConfig AppConfig
	unmarshalConf.DecoderConfig.Result = &appConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}

// normalizeEnvKey BROADCAST_REMOTE__ACCESS_TOKEN -> remote.access_token
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
