package snapshot

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"songbird_evals/internal/chathistory"
)

// Store archives accepted golden examples in a local SQLite file so curators
// can diff runs offline.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS golden_examples (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_at TIMESTAMP,
        question TEXT,
        sql_text TEXT,
        insights TEXT,
        source_timestamp REAL,
        user_email TEXT,
        session_id TEXT
    );`)
	return err
}

// Archive appends one run's examples under a shared run timestamp.
func (s *Store) Archive(ctx context.Context, examples []chathistory.Record, runAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO golden_examples
        (run_at, question, sql_text, insights, source_timestamp, user_email, session_id)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, ex := range examples {
		if _, err := stmt.ExecContext(ctx, runAt, ex.Question, ex.SQL, ex.Insights, ex.Timestamp, ex.UserEmail, ex.SessionID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Count returns the total number of archived examples across all runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM golden_examples`).Scan(&n)
	return n, err
}
