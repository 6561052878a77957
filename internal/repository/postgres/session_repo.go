package postgres

import (
	"context"
	"time"

	"github.com/and161185/zest/internal/model"
)

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ db *DB }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `
INSERT INTO sessions (id, user_id, token, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, s.ID, s.UserID, s.Token, s.ExpiresAt, s.CreatedAt)
	return err
}

// GetUserByToken joins the session with its user; expired sessions are not found.
func (r *SessionRepo) GetUserByToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	const q = `
SELECT u.id, u.email, u.full_name, u.password_hash, u.created_at
FROM sessions s JOIN users u ON u.id = s.user_id
WHERE s.token=$1 AND s.expires_at > $2`
	return scanUser(r.db.Pool.QueryRow(ctx, q, token, now))
}

// DeleteByToken removes the session if present.
func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// DeleteExpired removes sessions that expired at or before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
