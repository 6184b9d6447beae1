package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/internal/dto"
)

// ErrorHandler maps the service error taxonomy onto HTTP codes. Internal and
// external-service failures are logged with detail but answered with a
// generic message; everything else surfaces its text to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	} else {
		switch apperrors.KindOf(err) {
		case apperrors.KindValidation:
			code = http.StatusBadRequest
		case apperrors.KindAuthentication:
			code = http.StatusUnauthorized
		case apperrors.KindNotFound:
			code = http.StatusNotFound
		case apperrors.KindExternalService:
			code = http.StatusBadGateway
			slog.Error("external service failure", "path", c.Path(), "error", err)
			msg = "payment processor unavailable"
		default:
			slog.Error("internal error", "path", c.Path(), "error", err)
			msg = "internal error"
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
