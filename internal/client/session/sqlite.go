// Package session persists the token of the last successful login so that
// later authctl invocations can reuse it.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/solarauth/internal/dbx"
)

// ErrNoSession is returned by Load when nothing has been saved.
var ErrNoSession = errors.New("no saved session")

type Session struct {
	Endpoint string
	Login    string
	Token    string
	SavedAt  time.Time
}

type SQLiteStore struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Save replaces the stored session.
func (r *SQLiteStore) Save(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, endpoint, login, token, saved_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			endpoint = excluded.endpoint,
			login    = excluded.login,
			token    = excluded.token,
			saved_at = excluded.saved_at
	`, s.Endpoint, s.Login, s.Token, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteStore) Load(ctx context.Context) (*Session, error) {
	s := &Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT endpoint, login, token, saved_at FROM session WHERE id = 1`,
	).Scan(&s.Endpoint, &s.Login, &s.Token, &s.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

func (r *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
