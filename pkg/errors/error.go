package errors

import (
	"errors"
	"fmt"
)

// 표준 라이브러리 함수 재노출
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// Error는 기본 에러 인터페이스를 확장합니다
type Error interface {
	error
	Code() string  // 에러 코드 반환
	Unwrap() error // 내부 에러 반환
}

// AppError는 기본 에러 구현체입니다
type AppError struct {
	code    string
	message string
	detail  string
	err     error
}

func (e *AppError) Error() string {
	msg := e.message
	if e.detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.detail)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s", msg, e.err.Error())
	}
	return msg
}

func (e *AppError) Code() string {
	return e.code
}

// Message는 사용자에게 보여줄 짧은 메시지를 반환합니다
func (e *AppError) Message() string {
	return e.message
}

// Detail은 응답의 description에 들어갈 상세 설명을 반환합니다
func (e *AppError) Detail() string {
	return e.detail
}

func (e *AppError) Unwrap() error {
	return e.err
}

// Is는 같은 코드를 가진 AppError를 동일한 에러로 취급합니다
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.code == e.code
}

// NewAppError는 새 애플리케이션 에러를 생성합니다
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// WithDetail은 상세 설명을 덧붙인 복사본을 반환합니다
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.detail = detail
	return &cp
}

// Wrap은 기존 에러를 래핑합니다
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// 기존 AppError인 경우 코드를 유지합니다
	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}

	return NewAppError(ErrInternal, message, err)
}

// CodeOf는 에러 체인에서 AppError 코드를 찾아 반환합니다. 없으면 ErrInternal입니다.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}

// HasCode는 에러 체인에 주어진 코드의 AppError가 있는지 확인합니다
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	return As(err, &appErr) && appErr.Code() == code
}
