// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/migrations"
)

// sqliteKeyValue stores JSON blobs in a single kv table inside a local
// SQLite database. Schema is managed by the embedded goose migrations.
type sqliteKeyValue struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteKeyValue opens (creating if needed) the SQLite database at path,
// applies pending migrations, and returns a KeyValue on top of it.
func NewSQLiteKeyValue(ctx context.Context, path string, log *logger.Logger) (KeyValue, error) {
	if path == "" {
		return nil, ErrEmptyStoragePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping state database: %w", err)
	}

	if err = migrations.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state database: %w", err)
	}

	log.Debug().Str("path", path).Msg("state database ready")
	return &sqliteKeyValue{db: db, log: log}, nil
}

func (s *sqliteKeyValue) Get(ctx context.Context, key string) (json.RawMessage, error) {
	query, args, err := sq.Select("value").
		From("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build kv select: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read key %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (s *sqliteKeyValue) Set(ctx context.Context, key string, value json.RawMessage) error {
	query, args, err := sq.Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, string(value), time.Now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build kv upsert: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *sqliteKeyValue) Close() error {
	return s.db.Close()
}
