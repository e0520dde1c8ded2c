package errors

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

var (
	statusMu sync.RWMutex

	// 프레임워크가 만든 HTTP 에러(라우팅 실패, 바인딩 실패 등)에 붙일 코드
	statusCodes = map[int]string{
		http.StatusBadRequest:          ErrInvalidArgument,
		http.StatusUnauthorized:        ErrUnauthenticated,
		http.StatusForbidden:           ErrUnauthorized,
		http.StatusNotFound:            ErrNotFound,
		http.StatusMethodNotAllowed:    ErrMethodNotAllowed,
		http.StatusConflict:            ErrConflict,
		http.StatusNotImplemented:      ErrNotImplemented,
		http.StatusGatewayTimeout:      ErrTimeout,
		http.StatusInternalServerError: ErrInternal,
	}
)

// RegisterStatus는 HTTP 상태 코드에 대응하는 에러 코드를 바꿉니다.
// 서비스가 자신의 코드 체계로 응답을 통일할 때 사용합니다.
func RegisterStatus(status int, code string) {
	statusMu.Lock()
	defer statusMu.Unlock()
	statusCodes[status] = code
}

// ToHTTPStatus는 에러 코드를 HTTP 상태 코드로 변환합니다
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// FromHTTPError는 Echo HTTP 에러를 내부 에러로 변환합니다
func FromHTTPError(err error) error {
	if err == nil {
		return nil
	}

	// 이미 AppError인 경우 그대로 반환
	var appErr *AppError
	if As(err, &appErr) {
		return err
	}

	var echoErr *echo.HTTPError
	if As(err, &echoErr) {
		msg := http.StatusText(echoErr.Code)
		if m, ok := echoErr.Message.(string); ok {
			msg = m
		}
		return NewAppError(httpStatusToCode(echoErr.Code), msg, echoErr.Internal)
	}

	return NewAppError(ErrInternal, err.Error(), err)
}

// 등록되지 않은 4xx는 INVALID_ARGUMENT, 5xx는 INTERNAL
func httpStatusToCode(status int) string {
	statusMu.RLock()
	defer statusMu.RUnlock()
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= http.StatusInternalServerError {
		return ErrInternal
	}
	return ErrInvalidArgument
}
