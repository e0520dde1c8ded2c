package errors

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"

	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
)

// Error codes of the partner service
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeAuthorization    = "AUTHORIZATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeQuotaExceeded    = "QUOTA_EXCEEDED"
	CodeTeamFull         = "TEAM_FULL"
	CodeAlreadyJoined    = "ALREADY_JOINED"
	CodeNotMember        = "NOT_MEMBER"
	CodeSystem           = "SYSTEM_ERROR"
	CodeTimeout          = "TIMEOUT"
)

func init() {
	apperrors.Register(CodeValidation, http.StatusBadRequest, codes.InvalidArgument)
	apperrors.Register(CodeNotAuthenticated, http.StatusUnauthorized, codes.Unauthenticated)
	apperrors.Register(CodeAuthorization, http.StatusForbidden, codes.PermissionDenied)
	apperrors.Register(CodeNotFound, http.StatusNotFound, codes.NotFound)
	apperrors.Register(CodeQuotaExceeded, http.StatusConflict, codes.ResourceExhausted)
	apperrors.Register(CodeTeamFull, http.StatusConflict, codes.ResourceExhausted)
	apperrors.Register(CodeAlreadyJoined, http.StatusConflict, codes.AlreadyExists)
	apperrors.Register(CodeNotMember, http.StatusConflict, codes.FailedPrecondition)
	apperrors.Register(CodeSystem, http.StatusInternalServerError, codes.Internal)
	apperrors.Register(CodeTimeout, http.StatusGatewayTimeout, codes.DeadlineExceeded)

	// framework-raised HTTP errors use the same envelope codes
	apperrors.RegisterStatus(http.StatusBadRequest, CodeValidation)
	apperrors.RegisterStatus(http.StatusUnauthorized, CodeNotAuthenticated)
	apperrors.RegisterStatus(http.StatusForbidden, CodeAuthorization)
	apperrors.RegisterStatus(http.StatusNotFound, CodeNotFound)
	apperrors.RegisterStatus(http.StatusGatewayTimeout, CodeTimeout)
	apperrors.RegisterStatus(http.StatusInternalServerError, CodeSystem)
}

// Sentinels for errors.Is checks; AppError matches by code
var (
	ErrValidation       = apperrors.NewAppError(CodeValidation, "invalid request parameters", nil)
	ErrNotAuthenticated = apperrors.NewAppError(CodeNotAuthenticated, "not logged in", nil)
	ErrAuthorization    = apperrors.NewAppError(CodeAuthorization, "permission denied", nil)
	ErrNotFound         = apperrors.NewAppError(CodeNotFound, "resource not found", nil)
	ErrQuotaExceeded    = apperrors.NewAppError(CodeQuotaExceeded, "team quota exceeded", nil)
	ErrTeamFull         = apperrors.NewAppError(CodeTeamFull, "team is full", nil)
	ErrAlreadyJoined    = apperrors.NewAppError(CodeAlreadyJoined, "already a member of the team", nil)
	ErrNotMember        = apperrors.NewAppError(CodeNotMember, "not a member of the team", nil)
	ErrSystem           = apperrors.NewAppError(CodeSystem, "internal system error", nil)
	ErrTimeout          = apperrors.NewAppError(CodeTimeout, "operation timed out", nil)
)

// NewValidationError creates a validation error with a description
func NewValidationError(format string, args ...interface{}) *apperrors.AppError {
	return ErrValidation.WithDetail(fmt.Sprintf(format, args...))
}

// NewNotAuthenticatedError creates a not-logged-in error
func NewNotAuthenticatedError() *apperrors.AppError {
	return ErrNotAuthenticated
}

// NewAuthorizationError creates a permission error with a description
func NewAuthorizationError(detail string) *apperrors.AppError {
	return ErrAuthorization.WithDetail(detail)
}

// NewTeamNotFoundError creates a not-found error for a team
func NewTeamNotFoundError(teamID int64) *apperrors.AppError {
	return ErrNotFound.WithDetail(fmt.Sprintf("team %d does not exist", teamID))
}

// NewUserNotFoundError creates a not-found error for a user
func NewUserNotFoundError(userID int64) *apperrors.AppError {
	return ErrNotFound.WithDetail(fmt.Sprintf("user %d does not exist", userID))
}

// NewQuotaExceededError is returned when a user already holds the maximum number of teams
func NewQuotaExceededError(limit int) *apperrors.AppError {
	return ErrQuotaExceeded.WithDetail(fmt.Sprintf("a user can create or join at most %d teams", limit))
}

// NewTeamFullError is returned when a team reached its capacity
func NewTeamFullError(teamID int64, maxNum int) *apperrors.AppError {
	return ErrTeamFull.WithDetail(fmt.Sprintf("team %d already has %d members", teamID, maxNum))
}

// NewAlreadyJoinedError is returned on a duplicate join
func NewAlreadyJoinedError(teamID int64) *apperrors.AppError {
	return ErrAlreadyJoined.WithDetail(fmt.Sprintf("already joined team %d", teamID))
}

// NewNotMemberError is returned when quitting a team the user is not in
func NewNotMemberError(teamID int64) *apperrors.AppError {
	return ErrNotMember.WithDetail(fmt.Sprintf("not a member of team %d", teamID))
}

// NewSystemError wraps an unexpected infrastructure failure
func NewSystemError(message string, cause error) *apperrors.AppError {
	return apperrors.NewAppError(CodeSystem, "internal system error", cause).WithDetail(message)
}

// NewTimeoutError is returned when a lock could not be acquired in time
func NewTimeoutError(resource string) *apperrors.AppError {
	return ErrTimeout.WithDetail(fmt.Sprintf("timed out waiting for %s", resource))
}
