// Package server wires the solarauth server together: configuration,
// logging, the PostgreSQL store, the auth services and the gRPC endpoint,
// and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/solarauth/internal/logging"
	"github.com/dmitrijs2005/solarauth/internal/server/auth"
	"github.com/dmitrijs2005/solarauth/internal/server/authz"
	"github.com/dmitrijs2005/solarauth/internal/server/config"
	"github.com/dmitrijs2005/solarauth/internal/server/hasher"
	"github.com/dmitrijs2005/solarauth/internal/server/permissions"
	"github.com/dmitrijs2005/solarauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/solarauth/internal/server/services"

	gs "github.com/dmitrijs2005/solarauth/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB and newRepoManager are seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	facade      *authz.Facade
}

// NewApp connects to the database, applies migrations and builds the
// services. Missing or empty secrets make it fail.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, err
	}

	h, err := hasher.New(c.PasswordSalt)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewCodec([]byte(c.TokenSecret),
		auth.WithIssuer(c.TokenIssuer),
		auth.WithTTL(c.TokenValidityDuration),
	)
	if err != nil {
		return nil, err
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	us := services.NewUserService(db, rm, h, codec)
	loader := permissions.NewLoader(db, rm, logger)
	facade := authz.NewFacade(codec, us, loader, logger)

	return &App{config: c, logger: logger, db: db, userService: us, facade: facade}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.facade)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
