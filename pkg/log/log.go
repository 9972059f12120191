// Package log logrus 위에 브로드캐스트 서버의 로깅 규약을 얹은 패키지입니다.
//
// 모든 로그는 component 필드를 가집니다. 패키지마다 component 상수를 두고
// WithComponent 또는 WithComponentAndFields로 Entry를 만들어 사용합니다.
//
//	const component = "broadcast.writer"
//
//	applog.WithComponentAndFields(component, applog.Fields{
//	    "broadcast_id": id,
//	}).Info("브로드캐스트 전송 완료")
package log

import "github.com/sirupsen/logrus"

// WithComponent component 필드를 포함한 로그 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드를 포함한 로그 Entry를 반환합니다.
// fields에 component 키가 있더라도 인자로 받은 component가 우선합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	merged := make(Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["component"] = component
	return logrus.WithFields(merged)
}

// SetDebugMode debug가 true이면 Trace, 아니면 Info 레벨로 전환합니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(TraceLevel)
	} else {
		logrus.SetLevel(InfoLevel)
	}
}

// MaskSensitiveData 액세스 토큰 등 민감한 값을 로그에 남길 수 있는 형태로 가립니다.
func MaskSensitiveData(data string) string {
	switch {
	case data == "":
		return ""
	case len(data) <= 3:
		return "***"
	case len(data) <= 12:
		return data[:4] + "***"
	default:
		return data[:4] + "***" + data[len(data)-4:]
	}
}
