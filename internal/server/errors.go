package server

import (
	"errors"
	"net/http"

	"report_gen/internal/importer"
	"report_gen/internal/report"
	"report_gen/internal/service"

	"github.com/labstack/echo/v4"
)

// statusFor maps service and rendering errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrUnsupportedReportType),
		errors.Is(err, importer.ErrUnsupportedFile),
		errors.Is(err, service.ErrInvalidReport):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrMissingUserField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrReportNotReady):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body. Internal errors are logged and
// reported without detail.
func (s *Server) fail(c echo.Context, err error, msg string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error(msg)
		return c.JSON(status, map[string]string{"error": msg})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
