// Package prefs persists operator UI preferences (currently only the selected
// locale) so they survive panel restarts.
package prefs

import (
	"context"
	"fmt"

	"github.com/kapu/chzzk-recorder-panel/internal/config"
	"go.uber.org/zap"
)

// Store is a small durable key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open builds the store selected by PREFS_BACKEND.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Prefs.Backend {
	case config.PrefsBackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
	case config.PrefsBackendPostgres:
		return OpenPostgres(ctx, PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
	case config.PrefsBackendSQLite:
		return OpenSQLite(ctx, cfg.Prefs.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown prefs backend %q", cfg.Prefs.Backend)
	}
}
