// Package server is the HTTP shim in front of the pipeline: it serves the
// dashboard's static files and report, and accepts replacement workbooks.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"ticket-stats/internal/pipeline"
)

// Replacer installs an uploaded workbook and regenerates the report.
type Replacer interface {
	Replace(ctx context.Context, staged string) (*pipeline.Result, error)
}

// Config is what the shim needs to know about the file layout.
type Config struct {
	WebRoot     string
	TicketFile  string
	OutputFile  string
	MaxUploadMB int64
}

// Server wires the echo routes.
type Server struct {
	cfg      Config
	replacer Replacer
	echo     *echo.Echo
}

// New builds the echo instance with its middleware and routes.
func New(cfg Config, replacer Replacer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{cfg: cfg, replacer: replacer, echo: e}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Str("stack", string(stack)).
				Msg("Panic while serving request")
			return err
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("HTTP request")
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.POST("/upload", s.handleUpload)
	e.GET("/ticket_data.json", s.handleReport)
	e.GET("/*", s.handleStatic)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Upload server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("Upload server shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

// handleStatic serves WEB_ROOT, directories through their index.html.
// WEB_ROOT may be the data directory, so hidden files, spreadsheets and logs
// are never exposed.
func (s *Server) handleStatic(c echo.Context) error {
	p, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return echo.ErrNotFound
	}
	name := path.Clean("/" + p)
	if private(name) {
		return echo.ErrNotFound
	}
	return c.File(filepath.Join(s.cfg.WebRoot, filepath.FromSlash(name)))
}

func private(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	ext := strings.ToLower(path.Ext(name))
	return slices.Contains(AllowedExtensions, ext) || ext == ".log"
}

func (s *Server) handleReport(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.File(s.cfg.OutputFile)
}
