package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "hwbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendCycle(ctx context.Context, e CycleEntry) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles(at, ok, err, status, notified, ts) VALUES(?,?,?,?,?,?)`,
		e.At.Format(time.RFC3339Nano), boolInt(e.OK), nullStr(e.Error), nullStr(e.StatusMessage), boolInt(e.Notified), e.Timestamp,
	)
	return err
}

func (s *sqliteStore) AppendNotification(ctx context.Context, e NotificationEntry) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications(at, chat_id, text) VALUES(?,?,?)`,
		e.At.Format(time.RFC3339Nano), e.ChatID, e.Text,
	)
	return err
}

func (s *sqliteStore) CycleStats(ctx context.Context, since time.Time) (CycleStats, error) {
	if s == nil || s.db == nil {
		return CycleStats{}, ErrDisabled
	}
	var st CycleStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(notified), 0)
		 FROM cycles WHERE at >= ?`,
		since.Format(time.RFC3339Nano),
	).Scan(&st.Total, &st.Failed, &st.Notified)
	return st, err
}

func (s *sqliteStore) RecentNotifications(ctx context.Context, since time.Time, limit int) ([]NotificationEntry, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT at, chat_id, text FROM notifications WHERE at >= ? ORDER BY at DESC LIMIT ?`,
		since.Format(time.RFC3339Nano), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NotificationEntry
	for rows.Next() {
		var (
			at   string
			e    NotificationEntry
			text sql.NullString
		)
		if err := rows.Scan(&at, &e.ChatID, &text); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			e.At = t
		}
		e.Text = text.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
