package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/cartsync/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS local_carts (
	profile    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLite persists one guest cart row per profile in a database file, the
// durable counterpart of browser local storage.
type SQLite struct {
	db      *sql.DB
	profile string
}

func OpenSQLite(path, profile string) (*SQLite, error) {
	if profile == "" {
		return nil, fmt.Errorf("profile is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	// single writer, avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		sqliteSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("db.Exec[%s]: %w", stmt, err)
		}
	}

	return &SQLite{db: db, profile: profile}, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context) (domain.Cart, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM local_carts WHERE profile = ?`, s.profile).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewLocalCart(), nil
	}
	if err != nil {
		return domain.NewLocalCart(), storageError("read local cart", fmt.Errorf("db.QueryRowContext: %w", err))
	}

	cart, err := decodeCart([]byte(payload))
	if err != nil {
		return domain.NewLocalCart(), storageError("decode local cart", err)
	}
	return cart, nil
}

func (s *SQLite) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return storageError("encode local cart", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO local_carts (profile, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.profile, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return storageError("write local cart", fmt.Errorf("db.ExecContext: %w", err))
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_carts WHERE profile = ?`, s.profile)
	if err != nil {
		return storageError("clear local cart", fmt.Errorf("db.ExecContext: %w", err))
	}
	return nil
}
