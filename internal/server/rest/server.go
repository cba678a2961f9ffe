// Package rest serves the PostgREST-shaped HTTP API the account client talks
// to: the users and user_sessions tables, the verify_user_email procedure and
// the send-verification-email function.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// TableService is the row access the table routes need.
type TableService interface {
	InsertUser(ctx context.Context, in services.NewUser) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	ExtendSession(ctx context.Context, token string, expiresAt, lastActivity time.Time) error
	DeleteSession(ctx context.Context, token string) error
}

// VerificationService backs the procedure and function routes.
type VerificationService interface {
	VerifyUserEmail(ctx context.Context, token string) (bool, error)
	SendVerificationEmail(ctx context.Context, email, firstName string) error
}

type Server struct {
	address   string
	echo      *echo.Echo
	tables    TableService
	verifier  VerificationService
	logger    logging.Logger
	jwtSecret []byte
	metrics   *metrics
}

// NewServer builds the HTTP server and registers its metrics with reg.
func NewServer(a string, l logging.Logger, ts TableService, vs VerificationService, secretKey string, reg *prometheus.Registry) (*Server, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:   a,
		tables:    ts,
		verifier:  vs,
		logger:    l.With("module", "rest_server"),
		jwtSecret: []byte(secretKey),
		metrics:   m,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goccySerializer{}
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = s.errorHandler

	e.Use(s.observe)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := e.Group("/rest/v1", s.requireAPIKey)
	api.GET("/", s.root)
	api.HEAD("/", s.root)
	api.GET("/users", s.getUsers)
	api.POST("/users", s.insertUser)
	api.GET("/user_sessions", s.getSessions)
	api.POST("/user_sessions", s.insertSession)
	api.PATCH("/user_sessions", s.updateSession)
	api.DELETE("/user_sessions", s.deleteSession)
	api.POST("/rpc/verify_user_email", s.verifyUserEmail)

	fn := e.Group("/functions/v1", s.requireAPIKey)
	fn.POST("/send-verification-email", s.sendVerificationEmail)

	s.echo = e
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	s.echo.Listener = listen

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(sctx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
