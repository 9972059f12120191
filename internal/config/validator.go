package config

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 구조체 필드명 대신 설정 파일의 키 이름이 나오도록 한다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("cors_origin", validateCORSOrigin); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'cors_origin' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

func (c *AppConfig) validate() error {
	if err := checkStruct(&c.Remote, "원격 서비스(remote)"); err != nil {
		return err
	}
	if err := checkStruct(&c.Broadcast, "브로드캐스트(broadcast)"); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	return nil
}

func (c *APIConfig) validate() error {
	for _, origin := range c.AllowOrigins {
		if origin == "*" && len(c.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}
	return checkStruct(c, "API 서버(api)")
}

// checkStruct 태그 규칙에 따라 s를 검증하고 첫 번째 위반 항목을 사용자용 메시지로 변환합니다.
func checkStruct(s any, contextName string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	fieldErr := validationErrors[0]

	switch fieldErr.StructField() {
	case "ListenPort":
		return apperrors.New(apperrors.InvalidInput, "API 서버 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다")
	case "BaseURL":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("원격 서비스 주소(base_url)가 올바른 http(s) URL이 아닙니다: '%v'", fieldErr.Value()))
	case "AccessToken":
		return apperrors.New(apperrors.InvalidInput, "원격 서비스 액세스 토큰(access_token)이 설정되지 않았습니다")
	case "AppKeys":
		switch fieldErr.Tag() {
		case "unique":
			return apperrors.New(apperrors.InvalidInput, "API 키(app_keys)에 중복된 값이 있습니다")
		default:
			return apperrors.New(apperrors.InvalidInput, "API 키(app_keys)가 최소 1개 이상 설정되어야 합니다")
		}
	}

	if fieldErr.Tag() == "cors_origin" {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fieldErr.Value()))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s=%s, 값: '%v')", contextName, fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Param(), fieldErr.Value()))
}

func validateCORSOrigin(fl validator.FieldLevel) bool {
	return isValidCORSOrigin(fl.Field().String())
}

// isValidCORSOrigin "*" 또는 경로, 쿼리, 사용자 정보가 없는 http(s)://host[:port] 형식만 허용합니다.
func isValidCORSOrigin(origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "*" {
		return true
	}
	if origin == "" || strings.HasSuffix(origin, "/") {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return false
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return false
		}
	}

	host := u.Hostname()
	if host == "" {
		return false
	}
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
	}
	return true
}
