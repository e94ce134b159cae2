package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/activity"
	"github.com/lccc/gatelog/core/kiosk"
	"github.com/lccc/gatelog/core/notice"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/core/violation"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Registry   *prometheus.Registry

		ActivitySvc  *activity.Service
		StudentSvc   *student.Service
		ViolationSvc *violation.Service
		NoticeSvc    *notice.Service
		KioskSvc     *kiosk.Service
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	debug := s.Conf.Debug

	s.app.HideBanner = true
	s.app.Logger.SetLevel(log.INFO)
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.SignalShutdown)
	s.app.Debug = debug

	s.metrics = newMetrics(s.Registry)
	s.app.GET("/metrics", s.metrics.handler(s.Registry))
	s.app.GET("/health", s.health)

	registerActivityAPI(s.app, s.ActivitySvc, s.metrics, s.Validate)
	registerStudentAPI(s.app, s.StudentSvc, s.Validate)
	registerViolationAPI(s.app, s.ViolationSvc, s.Validate)
	registerNoticeAPI(s.app.Group("/admin"), s.NoticeSvc, s.Validate)
	registerKioskAPI(s.app, s.KioskSvc)
	registerConsoleAPI(s.app, s.Logger)
	registerPages(s.app, s.Conf.Web.Root)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.Logger.Info("API listening on " + s.Conf.Server.Host)
	if err := s.app.Start(s.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error that stopped the listener.
func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the process to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "build": s.Conf.Build})
}
