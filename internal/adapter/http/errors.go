package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"underwriting-backend/internal/domain/apperr"
)

// statusOf maps an apperr kind to its HTTP status.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrInvalidState, apperr.ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: apperr.MessageOf(err)}
	for _, f := range apperr.FieldsOf(err) {
		resp.Details = append(resp.Details, FieldError(f))
	}
	return resp
}

// writeError renders a use-case error. Internal causes are logged, never echoed.
func writeError(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "err", err)
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return c.JSON(code, ErrorResponse{Error: ae.Msg})
		}
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, toResponse(err))
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
}
