// Package db provides database connectivity and migration functionality.
// It establishes the pgx connection pool shared by every store and applies
// the SQL migrations under ./migrations with golang-migrate.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// The postgres database driver registers the "postgres://" scheme with migrate;
	// it talks to the server through lib/pq.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// The file source driver reads migrations from a local directory.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/config"
)

// NewPool establishes the PostgreSQL connection pool described by cfg and
// verifies it with a ping.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperror.NewConfigError("error parsing database DSN", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// A bounded context keeps startup from hanging when the database is unreachable.
	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError("error creating pgxpool", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError("error connecting to the database", err)
	}

	return pool, nil
}

// Direction selects which way RunMigrations moves the schema.
type Direction int

const (
	Up Direction = iota
	Down
)

// RunMigrations applies (Up) or rolls back (Down) every migration in
// cfg.MigrationsPath. Migration files follow golang-migrate's naming:
// {version}_{title}.up.sql / {version}_{title}.down.sql.
func RunMigrations(cfg *config.DatabaseConfig, dir Direction, log *zap.Logger) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DSN())
	if err != nil {
		return apperror.NewDatabaseError("failed to create migrator", err)
	}
	// m.Close returns one error for the source and one for the database handle.
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn("error closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return apperror.NewConfigError(fmt.Sprintf("unknown migration direction %d", dir), nil)
	}

	// ErrNoChange only means the schema is already where we want it.
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewDatabaseError("failed to run migrations", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return apperror.NewDatabaseError("failed to read migration version", verr)
	}
	log.Info("migrations complete", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
