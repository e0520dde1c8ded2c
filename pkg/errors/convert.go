package errors

import (
	"net/http"
	"sync"

	"google.golang.org/grpc/codes"
)

// CodePair는 프레임워크 간 코드 매핑을 위한 구조체입니다
type CodePair struct {
	HTTPStatus int
	GRPCCode   codes.Code
}

var (
	mappingMu sync.RWMutex

	// 코드 매핑 테이블
	codeMapping = map[string]CodePair{
		ErrInternal:        {http.StatusInternalServerError, codes.Internal},
		ErrNotFound:        {http.StatusNotFound, codes.NotFound},
		ErrInvalidArgument: {http.StatusBadRequest, codes.InvalidArgument},
		ErrUnauthenticated: {http.StatusUnauthorized, codes.Unauthenticated},
		ErrUnauthorized:    {http.StatusForbidden, codes.PermissionDenied},
		ErrConflict:        {http.StatusConflict, codes.AlreadyExists},
		ErrTimeout:         {http.StatusGatewayTimeout, codes.DeadlineExceeded},
		ErrNotImplemented:  {http.StatusNotImplemented, codes.Unimplemented},
	}
)

// Register는 서비스 고유 에러 코드를 HTTP/gRPC 코드와 함께 등록합니다.
// 같은 코드를 다시 등록하면 기존 매핑을 덮어씁니다.
func Register(code string, httpStatus int, grpcCode codes.Code) {
	mappingMu.Lock()
	defer mappingMu.Unlock()
	codeMapping[code] = CodePair{HTTPStatus: httpStatus, GRPCCode: grpcCode}
}

// GetCodeMapping은 특정 에러 코드에 대한 HTTP 및 gRPC 코드 매핑을 반환합니다
func GetCodeMapping(code string) (int, codes.Code) {
	mappingMu.RLock()
	defer mappingMu.RUnlock()
	if pair, ok := codeMapping[code]; ok {
		return pair.HTTPStatus, pair.GRPCCode
	}
	return http.StatusInternalServerError, codes.Internal // 기본값으로 Internal Server Error
}
