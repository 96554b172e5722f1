package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isafeDashboard/internal/query"
	"isafeDashboard/internal/ui"
)

// HealthCheck reports whether one upstream is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Network string
	// RefreshInterval is how often an open dashboard invalidates its
	// account's reads. Zero disables live refresh.
	RefreshInterval time.Duration
	AllowOrigins    []string
	HealthChecks    map[string]HealthCheck
	Now             func() time.Time
}

// Server is the dashboard's HTTP front end.
type Server struct {
	cfg      Config
	echo     *echo.Echo
	hooks    *query.Hooks
	renderer *ui.Renderer
	copies   *ui.CopyTracker
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func New(cfg Config, hooks *query.Hooks, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	renderer, err := ui.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		hooks:    hooks,
		renderer: renderer,
		copies:   ui.NewCopyTracker(cfg.Now),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:   logger,
	}
	s.upgrader.CheckOrigin = s.checkOrigin

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = echoRenderer{renderer}
	e.HTTPErrorHandler = s.errorHandler
	s.echo = e
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.Use(requestID(), requestLogger(s.logger), cors(s.cfg.AllowOrigins), session())

	e.GET("/healthz", s.healthz)

	api := e.Group("/api")
	api.GET("/events/:address", s.apiEvents)
	api.GET("/accounts/:address", s.apiAccounts)
	api.GET("/transactions/:account", s.apiTransactions)

	e.GET("/ws/:account", s.liveUpdates)

	e.GET("/partials/:account/:section", s.partial)
	e.POST("/partials/:account/copy", s.copy)

	e.GET("/", s.home)
	e.GET("/accounts/:address", s.accounts)
	e.GET("/:account", s.overview)
	e.GET("/:account/transactions", s.transactions)
	e.GET("/:account/settings", s.settings)
}

// Handler exposes the routes for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr), zap.String("network", s.cfg.Network))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return strings.HasSuffix(origin, "://"+r.Host)
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	if strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/healthz" {
		_ = c.JSON(code, errorResponse{Error: msg})
		return
	}
	_ = c.String(code, msg)
}

type echoRenderer struct {
	*ui.Renderer
}

// Render takes "page:<name>" for documents and "partial:<name>" for
// fragments.
func (r echoRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	kind, template, ok := strings.Cut(name, ":")
	if !ok {
		return fmt.Errorf("template %q has no kind", name)
	}
	switch kind {
	case "page":
		return r.Page(w, template, data)
	case "partial":
		return r.Partial(w, template, data)
	default:
		return fmt.Errorf("unknown template kind %q", kind)
	}
}
