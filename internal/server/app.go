// Package server wires the credential service together: storage, hashing,
// the optional Redis attempt lock, metrics and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/attemptlock"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	gs "github.com/dmitrijs2005/credkeeper/internal/server/grpc"
)

const meterName = "github.com/dmitrijs2005/credkeeper"

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	redis             *redis.Client
	credentialService *services.CredentialService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, dialect, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if err := app.init(ctx, dialect); err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}

func (app *App) init(ctx context.Context, dialect dbx.Dialect) error {
	rm, err := repomanager.NewSQLRepositoryManager(dialect)
	if err != nil {
		return err
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := cryptox.NewArgon2Hasher(cryptox.DefaultArgon2Params())
	if err != nil {
		return err
	}
	cipher, err := cryptox.NewAESCipher(app.config.CipherKey)
	if err != nil {
		return err
	}

	recorder, err := metrics.NewRecorder(otel.Meter(meterName))
	if err != nil {
		return fmt.Errorf("metrics init error: %w", err)
	}

	opts := []services.Option{
		services.WithLogger(app.logger.With("module", "credentials")),
		services.WithMetrics(recorder),
	}

	if app.config.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
		locker := attemptlock.NewRedisLocker(app.redis, app.config.AttemptLockTTL, app.config.AttemptLockTTL)
		opts = append(opts, services.WithLocker(locker))
		app.logger.Info(ctx, "Attempt lock enabled", "redis", app.config.RedisAddr)
	}

	app.credentialService = services.NewCredentialService(app.db, rm, hasher, cipher, app.config, opts...)
	return nil
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
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

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.credentialService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
