package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRegister_CustomCodeMapping(t *testing.T) {
	Register("TEST_TEAM_FULL", http.StatusConflict, codes.ResourceExhausted)

	httpStatus, grpcCode := GetCodeMapping("TEST_TEAM_FULL")
	assert.Equal(t, http.StatusConflict, httpStatus)
	assert.Equal(t, codes.ResourceExhausted, grpcCode)

	httpStatus, grpcCode = GetCodeMapping("UNKNOWN_CODE")
	assert.Equal(t, http.StatusInternalServerError, httpStatus)
	assert.Equal(t, codes.Internal, grpcCode)
}

func TestAppError_ErrorAndDetail(t *testing.T) {
	base := NewAppError(ErrInvalidArgument, "invalid request", nil)
	assert.Equal(t, "invalid request", base.Error())

	detailed := base.WithDetail("name too long")
	assert.Equal(t, "invalid request (name too long)", detailed.Error())
	assert.Equal(t, "name too long", detailed.Detail())
	assert.Empty(t, base.Detail(), "WithDetail must not mutate the original")

	wrapped := NewAppError(ErrInternal, "db failure", fmt.Errorf("connection reset"))
	assert.Equal(t, "db failure: connection reset", wrapped.Error())
}

func TestIs_MatchesByCode(t *testing.T) {
	sentinel := NewAppError(ErrNotFound, "not found", nil)
	err := fmt.Errorf("lookup: %w", NewAppError(ErrNotFound, "team not found", nil).WithDetail("id=3"))

	assert.True(t, Is(err, sentinel))
	assert.False(t, Is(err, NewAppError(ErrConflict, "conflict", nil)))
	assert.True(t, HasCode(err, ErrNotFound))
	assert.Equal(t, ErrNotFound, CodeOf(err))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))

	inner := NewAppError(ErrNotFound, "missing", nil)
	assert.Equal(t, ErrNotFound, CodeOf(Wrap(inner, "outer")))
	assert.Equal(t, ErrInternal, CodeOf(Wrap(fmt.Errorf("boom"), "outer")))
}

func TestFromHTTPError(t *testing.T) {
	err := FromHTTPError(echo.NewHTTPError(http.StatusNotFound, "no route"))
	assert.Equal(t, ErrNotFound, CodeOf(err))
	assert.Equal(t, "no route", err.(*AppError).Message())

	err = FromHTTPError(echo.NewHTTPError(http.StatusRequestEntityTooLarge))
	assert.Equal(t, ErrInvalidArgument, CodeOf(err))

	err = FromHTTPError(echo.NewHTTPError(http.StatusBadGateway))
	assert.Equal(t, ErrInternal, CodeOf(err))

	RegisterStatus(http.StatusTeapot, "TEST_TEAPOT")
	err = FromHTTPError(fmt.Errorf("wrapped: %w", echo.NewHTTPError(http.StatusTeapot)))
	assert.Equal(t, "TEST_TEAPOT", CodeOf(err))

	app := NewAppError(ErrConflict, "taken", nil)
	assert.Same(t, app, FromHTTPError(app))
}

func TestToGRPCError(t *testing.T) {
	assert.Nil(t, ToGRPCError(nil))

	st, ok := status.FromError(ToGRPCError(NewAppError(ErrTimeout, "lock wait timed out", nil)))
	require.True(t, ok)
	assert.Equal(t, codes.DeadlineExceeded, st.Code())
	assert.Equal(t, "lock wait timed out", st.Message())

	st, _ = status.FromError(ToGRPCError(fmt.Errorf("boom")))
	assert.Equal(t, codes.Internal, st.Code())

	already := status.Error(codes.NotFound, "gone")
	assert.Equal(t, already, ToGRPCError(already))
}

func TestLogError_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	LogError(logger, nil, "ignored")
	LogError(logger, NewAppError(ErrInvalidArgument, "bad", nil), "client")
	LogError(logger, fmt.Errorf("boom"), "server")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, ErrInvalidArgument, entries[0].ContextMap()["error_code"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
}
