package mystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(c context.Context, path string) (*SQLiteStore, func(), error) {
	if path == "" {
		path = "ergsync.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening sqlite db %s: %w", path, err)
	}
	_, err = db.ExecContext(c, createTableSQL)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error creating kv table: %w", err)
	}
	return &SQLiteStore{db: db}, func() {
		db.Close()
	}, nil
}

func (s *SQLiteStore) Put(c context.Context, key string, value string) error {
	_, err := s.db.ExecContext(c, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("error storing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Get(c context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(c, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error fetching %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Delete(c context.Context, key string) error {
	_, err := s.db.ExecContext(c, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("error deleting %s: %w", key, err)
	}
	return nil
}
