package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/zest/internal/convert"
	pkgcrypto "github.com/and161185/zest/internal/crypto"
	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// ShareService manages read grants on recipes.
type ShareService interface {
	// CreateShare grants access by email, by link, or both. A revoked grant for
	// the same recipient is reactivated with a new token.
	CreateShare(ctx context.Context, owner model.User, req model.ShareRequest) (model.ShareResult, error)
	// RevokeShare revokes an active share granted by owner.
	RevokeShare(ctx context.Context, owner model.User, shareID uuid.UUID) error
	// AcceptShare binds an active share token to the accepting user.
	AcceptShare(ctx context.Context, user model.User, token string) (model.AcceptResult, error)
	// ListSent returns the owner's grants, revoked ones included.
	ListSent(ctx context.Context, owner model.User) ([]model.SentShare, error)
	// ListReceived returns active grants addressed to the user.
	ListReceived(ctx context.Context, user model.User) ([]model.ReceivedShare, error)
	// ShareURL builds the public link for a token.
	ShareURL(token string) string
}

type ShareServiceImpl struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	shares  repository.ShareRepository
	baseURL string
	now     func() time.Time
}

// NewShareService constructs ShareService; baseURL prefixes share links.
func NewShareService(
	users repository.UserRepository, recipes repository.RecipeRepository, shares repository.ShareRepository, baseURL string,
) *ShareServiceImpl {
	return &ShareServiceImpl{
		users:   users,
		recipes: recipes,
		shares:  shares,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// ShareURL returns {baseURL}/shared/{token}.
func (s *ShareServiceImpl) ShareURL(token string) string {
	return s.baseURL + "/shared/" + token
}

// CreateShare implements ShareService.
func (s *ShareServiceImpl) CreateShare(ctx context.Context, owner model.User, req model.ShareRequest) (model.ShareResult, error) {
	email := convert.NormalizeEmail(req.Email)
	var issues errs.Issues
	issues.Check(email != "" || req.GenerateLink, "email", "Provide an email or generate a link share.")
	if email != "" {
		checkVar(&issues, "email", email, "email")
	}
	if err := issues.Err("Invalid share payload."); err != nil {
		return model.ShareResult{}, err
	}

	rec, err := s.recipes.GetOwned(ctx, owner.ID, req.RecipeID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.ShareResult{}, errs.New(errs.ErrNotFound, "Recipe not found.")
		}
		return model.ShareResult{}, err
	}

	var (
		target     uuid.NullUUID
		targetMail *string
	)
	if email != "" {
		if email == owner.Email {
			return model.ShareResult{}, errs.New(errs.ErrForbidden, "You cannot share a recipe with yourself.")
		}
		targetMail = &email
		// a known account binds the share right away
		u, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			target = uuid.NullUUID{UUID: u.ID, Valid: true}
		case !errors.Is(err, errs.ErrNotFound):
			return model.ShareResult{}, err
		}
	}

	token, err := pkgcrypto.NewToken()
	if err != nil {
		return model.ShareResult{}, err
	}

	existing, err := s.shares.FindForTarget(ctx, rec.ID, target, targetMail)
	switch {
	case err == nil:
		if existing.Active() {
			return model.ShareResult{}, errs.New(errs.ErrConflict, "This recipe is already shared with that recipient.")
		}
		share, err := s.shares.Reactivate(ctx, existing.ID, token, target, targetMail)
		if err != nil {
			return model.ShareResult{}, s.shareConflict(err)
		}
		return model.ShareResult{Share: *share, URL: s.ShareURL(share.ShareToken)}, nil
	case !errors.Is(err, errs.ErrNotFound):
		return model.ShareResult{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.ShareResult{}, err
	}
	share := model.RecipeShare{
		ID:               id,
		RecipeID:         rec.ID,
		SharedBy:         owner.ID,
		SharedWithUserID: target,
		SharedWithEmail:  targetMail,
		ShareToken:       token,
		Access:           model.AccessRead,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.shares.Create(ctx, &share); err != nil {
		return model.ShareResult{}, s.shareConflict(err)
	}
	return model.ShareResult{Share: share, URL: s.ShareURL(token)}, nil
}

// shareConflict maps a lost uniqueness race to the same conflict as the check above.
func (s *ShareServiceImpl) shareConflict(err error) error {
	if errors.Is(err, errs.ErrConflict) {
		return errs.New(errs.ErrConflict, "This recipe is already shared with that recipient.")
	}
	return fmt.Errorf("save share: %w", err)
}

// RevokeShare implements ShareService.
func (s *ShareServiceImpl) RevokeShare(ctx context.Context, owner model.User, shareID uuid.UUID) error {
	if err := s.shares.Revoke(ctx, shareID, owner.ID, s.now().UTC()); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.New(errs.ErrNotFound, "Share not found.")
		}
		return err
	}
	return nil
}

// AcceptShare implements ShareService.
func (s *ShareServiceImpl) AcceptShare(ctx context.Context, user model.User, token string) (model.AcceptResult, error) {
	share, err := s.shares.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AcceptResult{}, errs.New(errs.ErrNotFound, "Share not found.")
		}
		return model.AcceptResult{}, err
	}
	if share.SharedWithUserID.Valid && share.SharedWithUserID.UUID != user.ID {
		return model.AcceptResult{}, errs.New(errs.ErrForbidden, "This share is bound to a different account.")
	}
	if share.SharedWithEmail != nil && *share.SharedWithEmail != user.Email {
		return model.AcceptResult{}, errs.New(errs.ErrForbidden, "This share is intended for a different email.")
	}

	other, err := s.shares.FindActiveBoundToUser(ctx, share.RecipeID, user.ID)
	switch {
	case err == nil && other.ID != share.ID:
		return model.AcceptResult{ShareID: other.ID, RecipeID: other.RecipeID, AlreadyAccepted: true}, nil
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		return model.AcceptResult{}, err
	case err != nil:
		// nothing bound yet; a pending email grant already admits the user
		pending, err := s.shares.FindActiveForRecipient(ctx, share.RecipeID, user.ID, user.Email)
		switch {
		case err == nil && pending.ID != share.ID:
			return model.AcceptResult{ShareID: pending.ID, RecipeID: pending.RecipeID, AlreadyAccepted: true}, nil
		case err != nil && !errors.Is(err, errs.ErrNotFound):
			return model.AcceptResult{}, err
		}
	}

	bound, err := s.shares.Bind(ctx, share.ID, user.ID, user.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// revoked between lookup and bind
			return model.AcceptResult{}, errs.New(errs.ErrNotFound, "Share not found.")
		}
		return model.AcceptResult{}, s.shareConflict(err)
	}
	return model.AcceptResult{ShareID: bound.ID, RecipeID: bound.RecipeID, ShareToken: bound.ShareToken}, nil
}

// ListSent implements ShareService.
func (s *ShareServiceImpl) ListSent(ctx context.Context, owner model.User) ([]model.SentShare, error) {
	return s.shares.ListSent(ctx, owner.ID)
}

// ListReceived implements ShareService.
func (s *ShareServiceImpl) ListReceived(ctx context.Context, user model.User) ([]model.ReceivedShare, error) {
	return s.shares.ListReceived(ctx, user.ID, user.Email)
}
