package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
)

// CodeOK is the envelope code of every successful response
const CodeOK = "OK"

// Response is the uniform JSON envelope of every endpoint
type Response struct {
	Code        string      `json:"code"`
	Message     string      `json:"message"`
	Description string      `json:"description"`
	Data        interface{} `json:"data"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "ok", Data: data})
}

// RenderError maps an error onto its HTTP status and envelope. Causes of
// system errors never reach the client.
func RenderError(err error) (int, interface{}) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.ToHTTPStatus(appErr.Code()), Response{
			Code:        appErr.Code(),
			Message:     appErr.Message(),
			Description: appErr.Detail(),
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		converted := apperrors.FromHTTPError(he)
		msg := http.StatusText(he.Code)
		if m, isString := he.Message.(string); isString {
			msg = m
		}
		return he.Code, Response{Code: apperrors.CodeOf(converted), Message: msg}
	}

	return http.StatusInternalServerError, Response{Code: domainErrors.CodeSystem, Message: "internal server error"}
}
