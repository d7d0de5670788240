// Package tickers is the bookmark store: the list of symbols a user has
// saved for quick access. SQLite-backed, tiny on purpose.
package tickers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrExists is returned when a symbol is already saved.
var ErrExists = errors.New("ticker already saved")

// Store persists bookmarked tickers.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the bookmark database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ticker store: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tickers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT UNIQUE NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate ticker store: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add saves a symbol. Symbols are stored upper-cased; duplicates return
// ErrExists.
func (s *Store) Add(ctx context.Context, symbol string) error {
	symbol = normalize(symbol)
	if symbol == "" {
		return errors.New("empty ticker")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO tickers (ticker) VALUES (?)`, symbol)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrExists
		}
		return fmt.Errorf("save ticker %s: %w", symbol, err)
	}
	return nil
}

// List returns all saved symbols in insertion order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.query(ctx, `SELECT ticker FROM tickers ORDER BY id`)
}

// Search returns saved symbols containing the given fragment.
func (s *Store) Search(ctx context.Context, q string) ([]string, error) {
	return s.query(ctx, `SELECT ticker FROM tickers WHERE ticker LIKE ? ORDER BY id`,
		"%"+normalize(q)+"%")
}

// Remove deletes a saved symbol. Removing an unknown symbol is a no-op.
func (s *Store) Remove(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tickers WHERE ticker = ?`, normalize(symbol))
	if err != nil {
		return fmt.Errorf("remove ticker %s: %w", symbol, err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, stmt string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
