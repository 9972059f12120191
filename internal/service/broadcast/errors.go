package broadcast

import (
	"fmt"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
)

var (
	// ErrAlreadyStarted Start가 두 번 이상 호출되었을 때 반환됩니다.
	ErrAlreadyStarted = apperrors.New(apperrors.Conflict, "이미 시작된 브로드캐스트 작성기입니다")

	// ErrWriterCanceled 취소된 작성기를 시작하려 할 때 반환됩니다.
	ErrWriterCanceled = apperrors.New(apperrors.Conflict, "취소된 브로드캐스트 작성기는 다시 시작할 수 없습니다")

	// ErrNotRetryable 실패 상태가 아닌 작성기에 Retry를 요청했을 때 반환됩니다.
	ErrNotRetryable = apperrors.New(apperrors.Conflict, "실패한 브로드캐스트만 재시도할 수 있습니다")

	// ErrWriterNotFound 등록되지 않은 ID로 작성기를 찾을 때 반환됩니다.
	ErrWriterNotFound = apperrors.New(apperrors.NotFound, "해당 ID의 브로드캐스트 작성기를 찾을 수 없습니다")

	// ErrServiceNotRunning 서비스가 시작되지 않았거나 이미 종료되었을 때 반환됩니다.
	ErrServiceNotRunning = apperrors.New(apperrors.Unavailable, "브로드캐스트 서비스가 실행 중이지 않아 요청을 수행할 수 없습니다")

	// ErrSubmitQueueFull 작성 요청 대기열이 가득 찼을 때 반환됩니다.
	ErrSubmitQueueFull = apperrors.New(apperrors.Unavailable, "브로드캐스트 작성 대기열이 가득 차 일시적으로 요청을 접수할 수 없습니다")

	// ErrCancelQueueFull 취소 요청 대기열이 가득 찼을 때 반환됩니다.
	ErrCancelQueueFull = apperrors.New(apperrors.Unavailable, "브로드캐스트 취소 대기열이 가득 차 일시적으로 요청을 접수할 수 없습니다")

	// ErrInvalidSubmitRequest Submit에 nil 요청이 전달되었을 때 반환됩니다.
	ErrInvalidSubmitRequest = apperrors.New(apperrors.InvalidInput, "브로드캐스트 작성 요청이 비어 있습니다")
)

func newPanicError(op string, v any) error {
	return apperrors.New(apperrors.Internal, fmt.Sprintf("%s 처리 중 예기치 않은 내부 오류가 발생하였습니다 (상세: %v)", op, v))
}
