// Command timemanager is the TimeManager API server.
//
// `timemanager serve` (the default) loads configuration, connects to
// PostgreSQL, optionally migrates the schema and serves HTTP until SIGINT
// or SIGTERM. `timemanager migrate up|down` moves the schema and exits.
//
// @title TimeManager API
// @version 1.0
// @description Clock in/out tracking, teams and worked-hours reports.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/clocks"
	"github.com/user/timemanager-go/config"
	"github.com/user/timemanager-go/db"
	_ "github.com/user/timemanager-go/docs" // registers the Swagger spec
	"github.com/user/timemanager-go/logger"
	"github.com/user/timemanager-go/server"
	"github.com/user/timemanager-go/teams"
	"github.com/user/timemanager-go/users"
)

func main() {
	// In production the variables are set directly; .env is a development convenience.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	app := &cli.App{
		Name:   "timemanager",
		Usage:  "time tracking API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back database migrations",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateAction(db.Up)},
					{Name: "down", Usage: "roll back all migrations", Action: migrateAction(db.Down)},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap loads the configuration and builds the logger every command needs.
func bootstrap() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, lg, nil
}

func migrateAction(dir db.Direction) cli.ActionFunc {
	return func(*cli.Context) error {
		cfg, lg, err := bootstrap()
		if err != nil {
			return err
		}
		defer lg.Sync() //nolint:errcheck
		return db.RunMigrations(cfg.DB, dir, lg)
	}
}

func serve(c *cli.Context) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	defer lg.Sync() //nolint:errcheck

	if cfg.DB.AutoMigrate {
		if err := db.RunMigrations(cfg.DB, db.Up, lg); err != nil {
			return err
		}
	}

	pool, err := db.NewPool(c.Context, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	revoker, closeRevoker, err := newRevoker(c.Context, cfg.Redis, lg)
	if err != nil {
		return err
	}
	defer closeRevoker()

	handler := server.NewRouter(server.Deps{
		Config:  cfg,
		Log:     lg,
		DB:      pool,
		Users:   users.NewPgStore(pool),
		Teams:   teams.NewPgStore(pool),
		Clocks:  clocks.NewPgStore(pool),
		Revoker: revoker,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		lg.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		lg.Info("server shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	lg.Info("server stopped gracefully")
	return nil
}

// newRevoker picks Redis when REDIS_ADDR is set and the in-process store otherwise.
// The in-process store forgets revocations on restart and is not shared between replicas.
func newRevoker(ctx context.Context, cfg *config.RedisConfig, lg *zap.Logger) (auth.Revoker, func(), error) {
	if cfg.Addr == "" {
		lg.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		return auth.NewMemoryRevoker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	lg.Info("token revocation backed by redis", zap.String("addr", cfg.Addr))
	return auth.NewRedisRevoker(client, "timemanager:revoked:"), func() { client.Close() }, nil
}
