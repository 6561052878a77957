package repository

import (
	"context"
	"time"

	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ShareRepository stores recipe shares. At most one row exists per
// (recipe, recipient user) and per (recipe, recipient email).
type ShareRepository interface {
	// Create inserts a share; a uniqueness clash yields errs.ErrConflict.
	Create(ctx context.Context, s *model.RecipeShare) error
	// FindActiveByToken returns the non-revoked share carrying token.
	FindActiveByToken(ctx context.Context, token string) (*model.RecipeShare, error)
	// FindActiveForRecipient returns an active share on recipeID whose recipient
	// user is userID or whose recipient email is email.
	FindActiveForRecipient(ctx context.Context, recipeID, userID uuid.UUID, email string) (*model.RecipeShare, error)
	// FindForTarget returns any share (active or revoked) on recipeID matching the
	// recipient user or email, whichever are given.
	FindForTarget(ctx context.Context, recipeID uuid.UUID, userID uuid.NullUUID, email *string) (*model.RecipeShare, error)
	// FindActiveBoundToUser returns an active share on recipeID bound to userID.
	FindActiveBoundToUser(ctx context.Context, recipeID, userID uuid.UUID) (*model.RecipeShare, error)
	// Reactivate re-targets a revoked share with a fresh token.
	Reactivate(ctx context.Context, id uuid.UUID, token string, userID uuid.NullUUID, email *string) (*model.RecipeShare, error)
	// Revoke marks an active share owned by sharedBy as revoked.
	Revoke(ctx context.Context, id, sharedBy uuid.UUID, now time.Time) error
	// Bind sets the recipient identity of an active share.
	Bind(ctx context.Context, id, userID uuid.UUID, email string) (*model.RecipeShare, error)
	// ListSent returns every share granted by owner, revoked ones included.
	ListSent(ctx context.Context, owner uuid.UUID) ([]model.SentShare, error)
	// ListReceived returns active shares addressed to the user or the email.
	ListReceived(ctx context.Context, userID uuid.UUID, email string) ([]model.ReceivedShare, error)
}
