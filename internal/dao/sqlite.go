package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
	profile_key TEXT PRIMARY KEY,
	coins INTEGER NOT NULL DEFAULT 0,
	inventory TEXT NOT NULL DEFAULT '[]',
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const upsertUserSQL = `
INSERT INTO users (profile_key, coins, inventory, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile_key) DO UPDATE SET
	coins = excluded.coins,
	inventory = excluded.inventory,
	updated_at = CURRENT_TIMESTAMP;
`

// SQLiteStore is the default local-file backend.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createUsersSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, key string) (Progression, error) {
	row := s.db.QueryRowContext(ctx, "SELECT coins, inventory FROM users WHERE profile_key = ?", key)

	var coins int
	var inv string
	if err := row.Scan(&coins, &inv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultProgression(), nil
		}
		return DefaultProgression(), fmt.Errorf("load user %s: %w", key, err)
	}
	items, err := decodeInventory(inv)
	if err != nil {
		return DefaultProgression(), err
	}
	return Progression{Coins: coins, Inventory: items}, nil
}

func (s *SQLiteStore) SaveUser(ctx context.Context, key string, p Progression) error {
	inv, err := encodeInventory(p.Inventory)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertUserSQL, key, p.Coins, inv); err != nil {
		return fmt.Errorf("save user %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
