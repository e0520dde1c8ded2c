package errors

// 공통 에러 코드. 서비스 고유 코드는 Register로 추가합니다.
const (
	ErrInternal         = "INTERNAL"
	ErrNotFound         = "NOT_FOUND"
	ErrInvalidArgument  = "INVALID_ARGUMENT"
	ErrUnauthenticated  = "UNAUTHENTICATED"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrConflict         = "CONFLICT"
	ErrTimeout          = "TIMEOUT"
	ErrNotImplemented   = "NOT_IMPLEMENTED"
	ErrMethodNotAllowed = "METHOD_NOT_ALLOWED"
)
