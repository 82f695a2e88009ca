package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite stores memory as one row per (group, message).
type SQLite struct {
	db *sql.DB
}

var _ Backend = (*SQLite)(nil)

// NewSQLite opens or creates a SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection serialises writers, which SQLite needs anyway.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		group_id INTEGER NOT NULL,
		message  TEXT    NOT NULL,
		weight   INTEGER NOT NULL,
		PRIMARY KEY (group_id, message)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads every row.
func (s *SQLite) Load(ctx context.Context) (Histories, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_id, message, weight FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	h := Histories{}
	for rows.Next() {
		var (
			gid    int64
			msg    string
			weight int
		)
		if err := rows.Scan(&gid, &msg, &weight); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		g, ok := h[gid]
		if !ok {
			g = map[string]int{}
			h[gid] = g
		}
		g[msg] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}
	return h, nil
}

// Save replaces the table contents with h in one transaction.
func (s *SQLite) Save(ctx context.Context, h Histories) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM memories`); err != nil {
		return fmt.Errorf("clear memories: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO memories (group_id, message, weight) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for gid, g := range h {
		for msg, weight := range g {
			if _, err := stmt.ExecContext(ctx, gid, msg, weight); err != nil {
				return fmt.Errorf("insert memory: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
