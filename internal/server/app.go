// Package server wires the account backend together: PostgreSQL storage, the
// REST gateway, the gRPC health endpoint and the verification email queue.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notify"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/rest"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/accountkeeper/internal/server/grpc"
)

const (
	serviceName       = "accountkeeper-server"
	dbPingInterval    = 10 * time.Second
	migrationsTimeout = 30 * time.Second
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	publisher notify.Publisher
	rest      *rest.Server
	health    *gs.HealthServer
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, serviceName, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	ctx, cancel := context.WithTimeout(context.Background(), migrationsTimeout)
	defer cancel()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	pub, err := newPublisher(c, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "accountkeeper"),
	)

	ts := services.NewTableService(db, rm)
	vs := services.NewVerificationService(db, rm, pub, logger, c)

	rs, err := rest.NewServer(c.EndpointAddrHTTP, logger, ts, vs, c.SecretKey, reg)
	if err != nil {
		pub.Close()
		db.Close()
		return nil, err
	}

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		publisher: pub,
		rest:      rs,
		health:    gs.NewHealthServer(c.EndpointAddrGRPC, logger),
	}, nil
}

// newPublisher dials the broker when one is configured and falls back to
// logging the jobs otherwise.
func newPublisher(c *config.Config, l logging.Logger) (notify.Publisher, error) {
	if c.AMQPURI == "" {
		return notify.NewLogPublisher(l), nil
	}
	p, err := notify.DialAMQP(c.AMQPURI, c.AMQPQueue)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// logAPIKeys prints a non-expiring anon API key for local clients. The
// service_role key is only logged at debug level.
func (app *App) logAPIKeys(ctx context.Context) {
	secret := []byte(app.config.SecretKey)
	anon, err := auth.GenerateAPIKey(auth.RoleAnon, secret, 0)
	if err != nil {
		app.logger.Error(ctx, "generate anon key", "error", err)
		return
	}
	app.logger.Info(ctx, "anon api key", "key", anon)

	service, err := auth.GenerateAPIKey(auth.RoleService, secret, 0)
	if err != nil {
		app.logger.Error(ctx, "generate service key", "error", err)
		return
	}
	app.logger.Debug(ctx, "service_role api key", "key", service)
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.rest.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// watchDatabase reports NOT_SERVING on the health endpoint while the
// database is unreachable.
func (app *App) watchDatabase(ctx context.Context) {
	ticker := time.NewTicker(dbPingInterval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := app.db.PingContext(ctx)
			if ok := err == nil; ok != serving {
				serving = ok
				app.health.SetServing(ok)
				if ok {
					app.logger.Info(ctx, "database reachable again")
				} else {
					app.logger.Warn(ctx, "database unreachable", "error", err)
				}
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.logAPIKeys(ctx)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.watchDatabase(ctx)
	}()

	wg.Wait()

	if err := app.publisher.Close(); err != nil {
		app.logger.Error(ctx, "close publisher", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
