// Package db keeps visitor state in Postgres so sessions survive a
// restart and are shared between instances.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"Inshorts/internal/sessions"
)

// Open connects to dsn, sizes the pool and pings with a timeout so a
// dead database fails start-up instead of the first request.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "db: open")
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "db: ping")
	}
	return conn, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS visitor_sessions (
	id         TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS visitor_sessions_expires_at ON visitor_sessions (expires_at);`

// Migrate creates the visitor table when it does not exist.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	_, err := conn.ExecContext(ctx, schema)
	return errors.Wrap(err, "db: migrate")
}

// SessionStore is a sessions.Store on the visitor_sessions table.
type SessionStore struct {
	conn *sqlx.DB
	ttl  time.Duration
}

var _ sessions.Store = (*SessionStore)(nil)

func NewSessionStore(conn *sqlx.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{conn: conn, ttl: ttl}
}

type sessionRow struct {
	State     []byte    `db:"state"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (s *SessionStore) Load(ctx context.Context, id string) (*sessions.State, error) {
	var row sessionRow
	err := s.conn.GetContext(ctx, &row,
		`SELECT state, expires_at FROM visitor_sessions WHERE id = $1 AND expires_at > now()`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sessions.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "db: load visitor")
	}

	var st sessions.State
	if err := json.Unmarshal(row.State, &st); err != nil {
		return nil, errors.Wrap(err, "db: decode visitor")
	}
	return &st, nil
}

func (s *SessionStore) Save(ctx context.Context, id string, st *sessions.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "db: encode visitor")
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO visitor_sessions (id, state, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, expires_at = EXCLUDED.expires_at`,
		id, data, time.Now().Add(s.ttl))
	return errors.Wrap(err, "db: save visitor")
}

// Prune deletes expired visitors and reports how many went.
func (s *SessionStore) Prune(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM visitor_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, errors.Wrap(err, "db: prune visitors")
	}
	return res.RowsAffected()
}
