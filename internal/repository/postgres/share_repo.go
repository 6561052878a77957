package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/zest/internal/convert"
	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ShareRepo implements ShareRepository using PostgreSQL.
type ShareRepo struct{ db *DB }

// NewShareRepo constructs a share repository.
func NewShareRepo(db *DB) *ShareRepo { return &ShareRepo{db: db} }

const shareColumns = `id, recipe_id, shared_by, shared_with_user_id, shared_with_email, share_token, access, revoked_at, created_at`

func scanShare(row pgx.Row) (*model.RecipeShare, error) {
	var s model.RecipeShare
	err := row.Scan(&s.ID, &s.RecipeID, &s.SharedBy, &s.SharedWithUserID, &s.SharedWithEmail,
		&s.ShareToken, &s.Access, &s.RevokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.ErrConflict
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a share row.
func (r *ShareRepo) Create(ctx context.Context, s *model.RecipeShare) error {
	const q = `
INSERT INTO recipe_shares (` + shareColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Pool.Exec(ctx, q, s.ID, s.RecipeID, s.SharedBy, s.SharedWithUserID, s.SharedWithEmail,
		s.ShareToken, s.Access, s.RevokedAt, s.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	return err
}

// FindActiveByToken selects a non-revoked share by its token.
func (r *ShareRepo) FindActiveByToken(ctx context.Context, token string) (*model.RecipeShare, error) {
	const q = `SELECT ` + shareColumns + ` FROM recipe_shares WHERE share_token=$1 AND revoked_at IS NULL`
	return scanShare(r.db.Pool.QueryRow(ctx, q, token))
}

// FindActiveForRecipient selects an active share addressed to the user or the email.
func (r *ShareRepo) FindActiveForRecipient(
	ctx context.Context, recipeID, userID uuid.UUID, email string,
) (*model.RecipeShare, error) {
	const q = `
SELECT ` + shareColumns + ` FROM recipe_shares
WHERE recipe_id=$1 AND revoked_at IS NULL AND (shared_with_user_id=$2 OR shared_with_email=$3)
LIMIT 1`
	return scanShare(r.db.Pool.QueryRow(ctx, q, recipeID, userID, email))
}

// FindForTarget selects a share of any state by whichever recipient keys are
// known. Active rows come first so a live grant is reported as a conflict.
func (r *ShareRepo) FindForTarget(
	ctx context.Context, recipeID uuid.UUID, userID uuid.NullUUID, email *string,
) (*model.RecipeShare, error) {
	const order = ` ORDER BY (revoked_at IS NULL) DESC, created_at LIMIT 1`
	var row pgx.Row
	switch {
	case userID.Valid && email != nil:
		const q = `SELECT ` + shareColumns + ` FROM recipe_shares
WHERE recipe_id=$1 AND (shared_with_user_id=$2 OR shared_with_email=$3)` + order
		row = r.db.Pool.QueryRow(ctx, q, recipeID, userID.UUID, *email)
	case userID.Valid:
		const q = `SELECT ` + shareColumns + ` FROM recipe_shares
WHERE recipe_id=$1 AND shared_with_user_id=$2` + order
		row = r.db.Pool.QueryRow(ctx, q, recipeID, userID.UUID)
	case email != nil:
		const q = `SELECT ` + shareColumns + ` FROM recipe_shares
WHERE recipe_id=$1 AND shared_with_email=$2` + order
		row = r.db.Pool.QueryRow(ctx, q, recipeID, *email)
	default:
		return nil, errs.ErrNotFound
	}
	return scanShare(row)
}

// FindActiveBoundToUser selects an active share on the recipe bound to userID.
func (r *ShareRepo) FindActiveBoundToUser(ctx context.Context, recipeID, userID uuid.UUID) (*model.RecipeShare, error) {
	const q = `SELECT ` + shareColumns + ` FROM recipe_shares
WHERE recipe_id=$1 AND shared_with_user_id=$2 AND revoked_at IS NULL`
	return scanShare(r.db.Pool.QueryRow(ctx, q, recipeID, userID))
}

// Reactivate clears revocation, rotates the token and overwrites the recipient.
func (r *ShareRepo) Reactivate(
	ctx context.Context, id uuid.UUID, token string, userID uuid.NullUUID, email *string,
) (*model.RecipeShare, error) {
	const q = `
UPDATE recipe_shares
SET share_token=$2, revoked_at=NULL, shared_with_user_id=$3, shared_with_email=$4
WHERE id=$1 AND revoked_at IS NOT NULL
RETURNING ` + shareColumns
	return scanShare(r.db.Pool.QueryRow(ctx, q, id, token, userID, email))
}

// Revoke marks an active share as revoked. Foreign or already revoked shares
// are reported as not found.
func (r *ShareRepo) Revoke(ctx context.Context, id, sharedBy uuid.UUID, now time.Time) error {
	const q = `UPDATE recipe_shares SET revoked_at=$3 WHERE id=$1 AND shared_by=$2 AND revoked_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, id, sharedBy, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Bind attaches the recipient identity to an active share.
func (r *ShareRepo) Bind(ctx context.Context, id, userID uuid.UUID, email string) (*model.RecipeShare, error) {
	const q = `
UPDATE recipe_shares SET shared_with_user_id=$2, shared_with_email=$3
WHERE id=$1 AND revoked_at IS NULL
RETURNING ` + shareColumns
	return scanShare(r.db.Pool.QueryRow(ctx, q, id, userID, email))
}

// ListSent selects the owner's shares with recipe and recipient names.
func (r *ShareRepo) ListSent(ctx context.Context, owner uuid.UUID) ([]model.SentShare, error) {
	const q = `
SELECT s.id, s.recipe_id, r.name, s.shared_with_email, s.shared_with_user_id, u.full_name,
       s.share_token, s.revoked_at, s.created_at
FROM recipe_shares s
JOIN recipes r ON r.id = s.recipe_id
LEFT JOIN users u ON u.id = s.shared_with_user_id
WHERE s.shared_by=$1
ORDER BY s.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SentShare, 0)
	for rows.Next() {
		var s model.SentShare
		if err := rows.Scan(&s.ID, &s.RecipeID, &s.RecipeName, &s.SharedWithEmail, &s.SharedWithUserID,
			&s.RecipientName, &s.ShareToken, &s.RevokedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Active = s.RevokedAt == nil
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListReceived selects active shares addressed to the user by id or email.
func (r *ShareRepo) ListReceived(ctx context.Context, userID uuid.UUID, email string) ([]model.ReceivedShare, error) {
	const q = `
SELECT s.id, r.id, r.name, r.cuisine, r.status, r.prep_time_minutes, r.tags_json,
       u.full_name, u.email, s.share_token, s.created_at
FROM recipe_shares s
JOIN recipes r ON r.id = s.recipe_id
JOIN users u ON u.id = s.shared_by
WHERE s.revoked_at IS NULL AND (s.shared_with_user_id=$1 OR s.shared_with_email=$2)
ORDER BY s.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ReceivedShare, 0)
	for rows.Next() {
		var (
			s      model.ReceivedShare
			status string
			tags   *string
		)
		if err := rows.Scan(&s.ID, &s.RecipeID, &s.RecipeName, &s.Cuisine, &status, &s.PrepTimeMinutes,
			&tags, &s.SharedByName, &s.SharedByEmail, &s.ShareToken, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Status = model.RecipeStatus(status)
		s.Tags = convert.DecodeTags(tags)
		out = append(out, s)
	}
	return out, rows.Err()
}
