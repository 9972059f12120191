package remote

import (
	"context"
	"errors"
	"net"

	apperrors "github.com/darkkaiser/broadcast-server/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 재시도 횟수를 모두 소진했을 때의 원인 에러입니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과하여 요청을 완료하지 못했습니다")

	// ErrEmptyUploadURL 업로드 응답에 이미지 URL이 없을 때 반환됩니다.
	ErrEmptyUploadURL = apperrors.New(apperrors.ParsingFailed, "이미지 업로드 응답에 URL이 없습니다")

	// ErrMissingBroadcastID 게시 응답에 브로드캐스트 ID가 없을 때 반환됩니다.
	ErrMissingBroadcastID = apperrors.New(apperrors.ParsingFailed, "브로드캐스트 게시 응답에 ID가 없습니다")
)

func newErrMaxRetriesExceeded(lastErr error) error {
	if lastErr == nil {
		return ErrMaxRetriesExceeded
	}
	return apperrors.Wrap(lastErr, apperrors.Unavailable, ErrMaxRetriesExceeded.Error())
}

// classifyError 요청 전송 중 발생한 에러를 에러 타입으로 분류해 감쌉니다.
//
// 요청 컨텍스트가 취소된 경우는 실패가 아닌 Canceled로 보고되어야 하므로
// 가장 먼저 검사합니다. 이미 분류된 AppError는 그대로 반환합니다.
func classifyError(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return apperrors.Wrapf(err, apperrors.Canceled, "%s 요청이 취소되었습니다", op)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrapf(err, apperrors.Timeout, "%s 요청 시간이 초과되었습니다", op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrapf(err, apperrors.Timeout, "%s 요청 시간이 초과되었습니다", op)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return apperrors.Wrapf(err, apperrors.Unavailable, "%s 요청 전송 중 네트워크 에러가 발생했습니다", op)
}
