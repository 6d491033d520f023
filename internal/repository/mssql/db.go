package mssql

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/config"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const (
	driverName         = "sqlserver"
	defaultMaxOpen     = 10
	defaultIdleTimeout = 30 * time.Second
	connectTimeout     = 15 * time.Second
)

// DB is the single connection pool to the store database. The semaphore
// keeps in-flight calls at or below the pool size so excess callers wait
// here instead of inside the driver.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens and pings the pool. A missing setting yields a
// *domain.ConfigurationMissingError and an unreachable server a
// *domain.ConnectionFailureError.
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, BuildDSN(cfg))
	if err != nil {
		return nil, &domain.ConnectionFailureError{Err: err}
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	idle := time.Duration(cfg.IdleTimeoutSeconds) * time.Second
	if idle <= 0 {
		idle = defaultIdleTimeout
	}

	// Configure connection pool
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxIdleTime(idle)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionFailureError{Err: err}
	}

	log.Info().
		Str("server", cfg.Server).
		Str("database", cfg.Database).
		Int("max_open", maxOpen).
		Msg("connected to store database")

	return Wrap(db, int64(maxOpen)), nil
}

// Wrap adopts an already opened pool.
func Wrap(db *sqlx.DB, maxConcurrent int64) *DB {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxOpen
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// acquire blocks until a slot is free or ctx ends.
func (db *DB) acquire(ctx context.Context) (func(), error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire database slot: %w", err)
	}
	return func() { db.sem.Release(1) }, nil
}

// BuildDSN renders the sqlserver:// connection URL for cfg.
func BuildDSN(cfg config.DatabaseConfig) string {
	port := cfg.Port
	if port <= 0 {
		port = 1433
	}
	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("encrypt", cfg.EncryptMode())
	query.Set("TrustServerCertificate", "true")
	query.Set("app name", "report-dashboard")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Server, strconv.Itoa(port)),
		RawQuery: query.Encode(),
	}
	return u.String()
}
