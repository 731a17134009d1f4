// Package history keeps an audit log of completed exchanges in SQLite. The
// log is write-mostly and is never fed back into prompts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"langingo/internal/domain"

	_ "modernc.org/sqlite"
)

// Store implements respond.Recorder over SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite writes serialize anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		channel     TEXT NOT NULL,
		sender      TEXT,
		question    TEXT NOT NULL,
		intent      TEXT NOT NULL,
		summary     TEXT,
		reply       TEXT NOT NULL,
		audio_url   TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one exchange.
func (s *Store) Record(ctx context.Context, ex domain.Exchange) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (channel, sender, question, intent, summary, reply, audio_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ex.Channel, ex.From, ex.Question, string(ex.Intent), ex.Summary, ex.Reply, ex.AudioURL)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// Recent returns the newest exchanges, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Exchange, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel, sender, question, intent, summary, reply, audio_url, created_at
		 FROM exchanges ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var out []domain.Exchange
	for rows.Next() {
		var ex domain.Exchange
		var intent string
		if err := rows.Scan(&ex.ID, &ex.Channel, &ex.From, &ex.Question, &intent,
			&ex.Summary, &ex.Reply, &ex.AudioURL, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.Intent = domain.Intent(intent)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Prune deletes exchanges older than retentionDays and returns how many went.
func (s *Store) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM exchanges WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune exchanges: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("pruned old exchanges", "deleted", n, "retention_days", retentionDays)
	}
	return n, nil
}

func (s *Store) Close() error { return s.db.Close() }
