// Package postgres archives combat logs in PostgreSQL using pgx v5.
//
// The combat engine never touches the database; callers hand finished (or
// in-progress) logs to CombatLogRepository at their own archival boundary.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/config"
)

const (
	applicationName = "tactics"
	connectTimeout  = 5 * time.Second
)

// Pool owns the connection pool shared by the archive repositories.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to the database described by cfg and verifies it answers
// a ping within connectTimeout.
//
// Precondition: cfg must pass config validation; logger may be nil.
// Postcondition: Returns a ready Pool or a non-nil error; no connections are
// leaked on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := &Pool{pool: pool, logger: logger}
	if err := p.Health(ctx, connectTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	logger.Info("database pool ready",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return p, nil
}

// Health pings the database, failing if it does not answer within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// CombatLog returns a repository over this pool.
func (p *Pool) CombatLog() *CombatLogRepository {
	return NewCombatLogRepository(p.pool)
}

// Close releases every pooled connection. The Pool is unusable afterwards.
func (p *Pool) Close() {
	stat := p.pool.Stat()
	p.pool.Close()
	p.logger.Debug("database pool closed",
		zap.Int64("acquires", stat.AcquireCount()),
		zap.Duration("acquire_wait", stat.AcquireDuration()),
	)
}

// DB exposes the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
