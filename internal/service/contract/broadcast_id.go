package contract

import (
	"strconv"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
)

// BroadcastID 프로세스 안에서 브로드캐스트 작성기를 식별하는 값입니다.
// 1부터 시작하며 생성 순서대로 증가합니다. 0은 할당되지 않은 값을 뜻합니다.
type BroadcastID int64

func (id BroadcastID) IsZero() bool {
	return id == 0
}

func (id BroadcastID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseBroadcastID 경로 파라미터 등 문자열로 전달된 ID를 해석합니다.
func ParseBroadcastID(s string) (BroadcastID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperrors.Newf(apperrors.InvalidInput, "브로드캐스트 ID 형식이 올바르지 않습니다: '%s'", s)
	}
	return BroadcastID(n), nil
}

// IDGenerator 새 BroadcastID를 발급합니다. 여러 고루틴에서 동시에 호출할 수 있어야 하며,
// 이전에 발급한 값보다 항상 큰 값을 반환해야 합니다.
type IDGenerator interface {
	Next() BroadcastID
}
