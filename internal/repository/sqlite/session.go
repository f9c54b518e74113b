package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

// SessionDB provides the session repository methods over the shared
// connection. Obtain one via DB.Sessions().
type SessionDB struct {
	conn *sql.DB
}

// Sessions returns the session repository view of the database.
func (db *DB) Sessions() *SessionDB {
	return &SessionDB{conn: db.conn}
}

// compile-time check that *SessionDB implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionDB)(nil)

// Create persists a new session row. The token is the primary key, so a
// duplicate token fails the insert — with 256 bits of randomness that never
// happens in practice, and if it somehow did, failing loudly is correct.
func (db *SessionDB) Create(ctx context.Context, session *model.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		session.Token,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}
	return nil
}

// GetByToken looks up a session by its token.
//
// Absence is NOT an error here — this runs on every request for every
// cookie-bearing client, including stale cookies from long ago. (nil, nil)
// means "no such session"; a non-nil error means the store itself failed.
func (db *SessionDB) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session

	err := db.conn.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at
		 FROM sessions WHERE token = ?`,
		token,
	).Scan(
		&s.Token,
		&s.UserID,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &s, nil
}

// UpdateExpiry moves a session's expiry forward (sliding expiration).
//
// Plain single-row UPDATE, no transaction: two concurrent extensions of the
// same near-expiry session write the same new value, so the race is
// harmless. Updating an absent token affects zero rows and is not an error.
func (db *SessionDB) UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET expires_at = ? WHERE token = ?`,
		expiresAt, token,
	)
	if err != nil {
		return fmt.Errorf("sqlite: extending session: %w", err)
	}
	return nil
}

// Delete removes a session row. Idempotent — deleting an absent token
// affects zero rows and returns nil.
func (db *SessionDB) Delete(ctx context.Context, token string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}
	return nil
}

// DeleteByUserID removes every session owned by the given user.
func (db *SessionDB) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting sessions for user %s: %w", userID, err)
	}
	return nil
}
