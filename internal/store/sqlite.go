package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mirrwin/upsmon/internal/errors"
	"codeberg.org/mirrwin/upsmon/internal/logger"
	"codeberg.org/mirrwin/upsmon/internal/telemetry"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/upsmon/baselines.db"
)

type Config struct {
	DBPath string
}

func DefaultConfig() Config {
	return Config{
		DBPath: defaultDBPath,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	return nil
}

type sqliteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (creating if needed) the baseline database at cfg.DBPath.
func NewSQLite(cfg Config) (BaselineStore, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Msgf("Initializing baseline store at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteStore{
		db: db,
	}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS baselines (
            metric     TEXT PRIMARY KEY,
            value      REAL NOT NULL,
            updated_at INTEGER NOT NULL
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

func (s *sqliteStore) Get(ctx context.Context, metric telemetry.Metric) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value float64
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM baselines WHERE metric = ?", string(metric),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.New().Wrap(ErrStorageAccess, err)
	}

	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, metric telemetry.Metric, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO baselines (metric, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(metric) DO UPDATE SET
            value = excluded.value,
            updated_at = excluded.updated_at
    `, string(metric), value, time.Now().Unix())
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (s *sqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}
