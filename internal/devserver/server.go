// Package devserver is a local implementation of the standup service. It
// stores entries in SQLite and can answer in any of the response envelopes
// the client understands, which makes it useful for development and for
// end-to-end tests.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Envelope is the response wrapping the server uses.
type Envelope string

const (
	EnvelopeBare    Envelope = "bare"    // {...}
	EnvelopeData    Envelope = "data"    // {"data": {...}}
	EnvelopeNested  Envelope = "nested"  // {"data": {"data": {...}}}
	EnvelopeSuccess Envelope = "success" // {"data": {"success": true, "data": {...}}}
)

// Envelopes lists every supported wrapping.
var Envelopes = []Envelope{EnvelopeBare, EnvelopeData, EnvelopeNested, EnvelopeSuccess}

// ParseEnvelope validates an envelope name.
func ParseEnvelope(s string) (Envelope, error) {
	for _, e := range Envelopes {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown envelope %q (want bare, data, nested or success)", s)
}

func (e Envelope) wrap(v any) any {
	switch e {
	case EnvelopeData:
		return map[string]any{"data": v}
	case EnvelopeNested:
		return map[string]any{"data": map[string]any{"data": v}}
	case EnvelopeSuccess:
		return map[string]any{"data": map[string]any{"success": true, "data": v}}
	default:
		return v
	}
}

// OpenDB opens the SQLite database at path and migrates it. An empty path
// or ":memory:" gives a private in-memory database.
func OpenDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise get its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&standup{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

// Server serves the standup API.
type Server struct {
	db       *gorm.DB
	envelope Envelope
	token    string
	log      *slog.Logger
	now      func() time.Time
	echo     *echo.Echo
}

// Option configures a Server.
type Option func(*Server)

// WithEnvelope selects the response wrapping (default bare).
func WithEnvelope(e Envelope) Option {
	return func(s *Server) { s.envelope = e }
}

// WithToken requires every request to carry this bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock overrides time.Now, used for streaks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds the server around db.
func New(db *gorm.DB, opts ...Option) *Server {
	s := &Server{
		db:       db,
		envelope: EnvelopeBare,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.echo = s.routes()
	return s
}

// Handler exposes the server for httptest or custom listeners.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("dev server listening", "addr", addr, "envelope", string(s.envelope))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	g := e.Group("/api/standups")
	if s.token != "" {
		g.Use(middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
			return key == s.token, nil
		}))
	}
	g.GET("", s.list)
	g.POST("", s.create)
	g.GET("/search", s.search)
	g.GET("/stats", s.stats)
	g.GET("/:date", s.get)
	g.PUT("/:date", s.update)
	g.DELETE("/:date", s.remove)
	g.PATCH("/:date/highlight", s.toggle)
	return e
}

// handleError renders every error as {"message": ...}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	if err := c.JSON(status, map[string]string{"message": msg}); err != nil {
		s.log.Warn("writing error response", "error", err)
	}
}

func (s *Server) respond(c echo.Context, status int, v any) error {
	return c.JSON(status, s.envelope.wrap(v))
}
