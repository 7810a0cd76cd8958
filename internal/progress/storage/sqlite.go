// Package storage holds the durable slot storages the progress store flushes to.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"
	"github.com/2beens/fitnesstracker/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var (
	_ progress.SlotStorage = (*SQLite)(nil)
	_ Leaser               = (*SQLite)(nil)
)

// SQLite keeps the slots in a single table of a local database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := pkg.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("ensure db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite [%s]: %w", path, err)
	}
	// a single connection serializes writers, sqlite allows only one anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debugf("sqlite slot storage ready: %s", path)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Read(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sqlite.read")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, progress.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select slot [%s]: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLite) Write(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sqlite.write")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert slot [%s]: %w", key, err)
	}
	return nil
}

// AcquireLease stores the lease expiry as unix milliseconds.
func (s *SQLite) AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leases (name, owner, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET owner = excluded.owner, expires_at = excluded.expires_at
		WHERE leases.owner = excluded.owner OR leases.expires_at < ?`,
		name, owner, now+ttl.Milliseconds(), now,
	)
	if err != nil {
		return false, fmt.Errorf("acquire lease [%s]: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lease [%s]: %w", name, err)
	}
	return affected > 0, nil
}

func (s *SQLite) ReleaseLease(ctx context.Context, name, owner string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM leases WHERE name = ? AND owner = ?`, name, owner); err != nil {
		return fmt.Errorf("release lease [%s]: %w", name, err)
	}
	return nil
}

func (s *SQLite) LeaseHolder(ctx context.Context, name string) (string, bool, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		`SELECT owner FROM leases WHERE name = ? AND expires_at >= ?`,
		name, time.Now().UnixMilli(),
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select lease [%s]: %w", name, err)
	}
	return owner, true, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
