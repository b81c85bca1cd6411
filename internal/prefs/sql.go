package prefs

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kapu/chzzk-recorder-panel/pkg/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLStore keeps preferences in a single key/value table. The same statements
// run on SQLite and PostgreSQL; both accept $n placeholders and ON CONFLICT.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

const (
	createPrefsTable = `CREATE TABLE IF NOT EXISTS panel_preferences (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	selectPref = `SELECT value FROM panel_preferences WHERE key = $1`
	upsertPref = `INSERT INTO panel_preferences (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// OpenSQLite opens (creating if needed) a local preference file.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create prefs dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	store, err := newSQLStore(ctx, db, "sqlite", logger)
	if err != nil {
		return nil, err
	}
	logger.Info("SQLite preference store opened", zap.String("path", path))
	return store, nil
}

func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*SQLStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := newSQLStore(ctx, db, "postgres", logger)
	if err != nil {
		return nil, err
	}
	logger.Info("PostgreSQL preference store connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)
	return store, nil
}

func newSQLStore(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) (*SQLStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(pingCtx, createPrefsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s prefs: %w", driver, err)
	}

	return &SQLStore{db: db, driver: driver, logger: logger}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectPref, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("Preference get failed", zap.String("driver", s.driver), zap.String("key", key), zap.Error(err))
		return "", false, errors.NewStorageError("get failed", "get", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertPref, key, value, time.Now().UTC()); err != nil {
		s.logger.Error("Preference set failed", zap.String("driver", s.driver), zap.String("key", key), zap.Error(err))
		return errors.NewStorageError("set failed", "set", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
