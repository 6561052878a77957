package repository

import (
	"context"
	"time"

	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
)

// RecipeRepository stores recipes. Mutations are scoped by owner so that a
// non-owned recipe is indistinguishable from a missing one.
type RecipeRepository interface {
	// Create inserts a sanitized recipe.
	Create(ctx context.Context, r *model.Recipe) error
	// GetByID loads a recipe regardless of owner.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	// GetOwned loads a recipe only if ownerID owns it.
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*model.Recipe, error)
	// Update applies the present fields of a sanitized patch and refreshes updated_at.
	Update(ctx context.Context, ownerID, id uuid.UUID, p model.RecipePatch, now time.Time) (*model.Recipe, error)
	// Delete removes the recipe and, by cascade, its shares.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// List returns the owner's recipes matching f, most recently updated first.
	List(ctx context.Context, ownerID uuid.UUID, f model.RecipeFilter) ([]model.Recipe, error)
}
