// Package server exposes the report service over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"report_gen/internal/auth"
	"report_gen/internal/config"
	"report_gen/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// maxUploadSize bounds item upload bodies.
const maxUploadSize = "10M"

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	service service.ReportService
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, reportService service.ReportService, tokens *auth.JWTManager, logger *logrus.Logger) *Server {
	e := echo.New()
	e.Debug = cfg.IsDevelopment()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(requestLogger(logger))

	server := &Server{
		echo:    e,
		service: reportService,
		logger:  logger,
	}

	server.setupRoutes(tokens)
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) setupRoutes(tokens *auth.JWTManager) {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1", auth.OptionalAuth(tokens))
	{
		reports := api.Group("/reports")
		{
			reports.POST("/render", s.renderReport)
			reports.POST("/render/upload", s.renderUpload, middleware.BodyLimit(maxUploadSize))
			reports.POST("", s.createReport)
			reports.GET("", s.listReports)
			reports.GET("/:id", s.getReport)
			reports.DELETE("/:id", s.deleteReport)
			reports.GET("/:id/download", s.downloadReport)
			reports.GET("/:id/url", s.reportURL)
		}

		items := api.Group("/items")
		{
			items.POST("", s.replaceItems)
			items.POST("/upload", s.uploadItems, middleware.BodyLimit(maxUploadSize))
			items.GET("", s.listItems)
			items.GET("/export", s.exportItems)
		}
	}
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("Request failed")
				return nil
			}
			entry.Debug("Request handled")
			return nil
		},
	})
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "report-gen",
	})
}
