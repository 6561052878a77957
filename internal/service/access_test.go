package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
)

func TestAccess_Resolve(t *testing.T) {
	t.Parallel()
	a := newApp()
	ctx := context.Background()
	owner := a.addUser(t, "Owner", "owner@example.com")
	reader := a.addUser(t, "Reader", "reader@example.com")
	stranger := a.addUser(t, "Stranger", "stranger@example.com")
	r := a.addRecipe(t, owner, "Soup")

	acc, err := a.access.ResolveAccess(ctx, owner, r.ID)
	if err != nil || acc.Role != model.RoleOwner || acc.ShareID.Valid {
		t.Fatalf("owner: %+v %v", acc, err)
	}

	_, err = a.access.ResolveAccess(ctx, stranger, r.ID)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("stranger: want ErrNotFound, got %v", err)
	}
	_, missingErr := a.access.ResolveAccess(ctx, owner, uuid.Must(uuid.NewV4()))
	if !errors.Is(missingErr, errs.ErrNotFound) || missingErr.Error() != err.Error() {
		t.Fatalf("denied and missing must look alike: %v vs %v", err, missingErr)
	}

	res, err := a.shares.CreateShare(ctx, owner, model.ShareRequest{RecipeID: r.ID, Email: reader.Email})
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	acc, err = a.access.ResolveAccess(ctx, reader, r.ID)
	if err != nil || acc.Role != model.RoleSharedReader || acc.ShareID.UUID != res.Share.ID || acc.Recipe.Name != "Soup" {
		t.Fatalf("reader: %+v %v", acc, err)
	}

	if err := a.shares.RevokeShare(ctx, owner, res.Share.ID); err != nil {
		t.Fatalf("RevokeShare: %v", err)
	}
	if _, err := a.access.ResolveAccess(ctx, reader, r.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("revoked reader: %v", err)
	}
}

func TestAccess_PendingEmailShareMatchesByEmail(t *testing.T) {
	t.Parallel()
	a := newApp()
	ctx := context.Background()
	owner := a.addUser(t, "Owner", "owner@example.com")
	r := a.addRecipe(t, owner, "Soup")
	if _, err := a.shares.CreateShare(ctx, owner, model.ShareRequest{RecipeID: r.ID, Email: "new@example.com"}); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	newcomer := a.addUser(t, "Newcomer", "new@example.com")
	acc, err := a.access.ResolveAccess(ctx, newcomer, r.ID)
	if err != nil || acc.Role != model.RoleSharedReader {
		t.Fatalf("newcomer: %+v %v", acc, err)
	}
}

func TestAccess_ByToken(t *testing.T) {
	t.Parallel()
	a := newApp()
	ctx := context.Background()
	owner := a.addUser(t, "Owner", "owner@example.com")
	bob := a.addUser(t, "Bob", "bob@example.com")
	carol := a.addUser(t, "Carol", "carol@example.com")
	r := a.addRecipe(t, owner, "Soup")

	if _, err := a.access.ResolveAccessByToken(ctx, bob, ""); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("empty token: %v", err)
	}

	link, err := a.shares.CreateShare(ctx, owner, model.ShareRequest{RecipeID: r.ID, GenerateLink: true})
	if err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	tok := link.Share.ShareToken

	// an unbound link admits anyone
	for _, u := range []model.User{bob, carol} {
		acc, err := a.access.ResolveAccessByToken(ctx, u, tok)
		if err != nil || acc.Role != model.RoleSharedReader {
			t.Fatalf("%s before bind: %+v %v", u.Email, acc, err)
		}
	}

	acc, err := a.access.ResolveAccessByToken(ctx, owner, tok)
	if err != nil || acc.Role != model.RoleOwner {
		t.Fatalf("owner through own link: %+v %v", acc, err)
	}

	if _, err := a.shares.AcceptShare(ctx, bob, tok); err != nil {
		t.Fatalf("AcceptShare: %v", err)
	}
	if _, err := a.access.ResolveAccessByToken(ctx, bob, tok); err != nil {
		t.Fatalf("bob after bind: %v", err)
	}
	if _, err := a.access.ResolveAccessByToken(ctx, carol, tok); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("carol after bind: want ErrNotFound, got %v", err)
	}
	if _, err := a.access.ResolveAccessByToken(ctx, owner, tok); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("owner through a link bound to bob: want ErrNotFound, got %v", err)
	}

	if err := a.shares.RevokeShare(ctx, owner, link.Share.ID); err != nil {
		t.Fatalf("RevokeShare: %v", err)
	}
	if _, err := a.access.ResolveAccessByToken(ctx, bob, tok); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("bob after revoke: %v", err)
	}
}
