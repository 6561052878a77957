package service

import (
	"context"
	"errors"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// AccessService decides whether a user may read a recipe and in which role.
// Denied is always reported as errs.ErrNotFound so callers cannot tell a
// missing recipe from a forbidden one.
type AccessService interface {
	// ResolveAccess checks ownership first, then active shares addressed to the user.
	ResolveAccess(ctx context.Context, user model.User, recipeID uuid.UUID) (model.RecipeAccess, error)
	// ResolveAccessByToken checks an active share token and its optional binding.
	ResolveAccessByToken(ctx context.Context, user model.User, token string) (model.RecipeAccess, error)
}

type AccessServiceImpl struct {
	recipes repository.RecipeRepository
	shares  repository.ShareRepository
}

// NewAccessService constructs AccessService.
func NewAccessService(recipes repository.RecipeRepository, shares repository.ShareRepository) *AccessServiceImpl {
	return &AccessServiceImpl{recipes: recipes, shares: shares}
}

func denied(err error) (model.RecipeAccess, error) {
	if errors.Is(err, errs.ErrNotFound) {
		return model.RecipeAccess{Role: model.RoleDenied}, errs.New(errs.ErrNotFound, "Recipe not found.")
	}
	return model.RecipeAccess{Role: model.RoleDenied}, err
}

// ResolveAccess returns the owner view when user owns the recipe regardless
// of any share state; otherwise a shared view when an active share matches
// the user's id or normalized email.
func (s *AccessServiceImpl) ResolveAccess(ctx context.Context, user model.User, recipeID uuid.UUID) (model.RecipeAccess, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return denied(err)
	}
	if rec.OwnerID == user.ID {
		return model.RecipeAccess{Recipe: *rec, Role: model.RoleOwner}, nil
	}

	share, err := s.shares.FindActiveForRecipient(ctx, recipeID, user.ID, user.Email)
	if err != nil {
		return denied(err)
	}
	return model.RecipeAccess{
		Recipe:  *rec,
		Role:    model.RoleSharedReader,
		ShareID: uuid.NullUUID{UUID: share.ID, Valid: true},
	}, nil
}

// ResolveAccessByToken grants access through an active share token. Once a
// share is bound to a user or email it only admits that identity.
func (s *AccessServiceImpl) ResolveAccessByToken(ctx context.Context, user model.User, token string) (model.RecipeAccess, error) {
	if token == "" {
		return denied(errs.ErrNotFound)
	}
	share, err := s.shares.FindActiveByToken(ctx, token)
	if err != nil {
		return denied(err)
	}
	if share.BoundElsewhere(user) {
		return denied(errs.ErrNotFound)
	}
	rec, err := s.recipes.GetByID(ctx, share.RecipeID)
	if err != nil {
		return denied(err)
	}
	role := model.RoleSharedReader
	if rec.OwnerID == user.ID {
		role = model.RoleOwner
	}
	return model.RecipeAccess{Recipe: *rec, Role: role, ShareID: uuid.NullUUID{UUID: share.ID, Valid: true}}, nil
}
