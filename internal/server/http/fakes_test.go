package httpserver

import (
	"context"
	"time"

	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/service"
	"github.com/gofrs/uuid/v5"
)

type fakeAuth struct {
	byToken map[string]model.User

	signInIP    string
	signInErr   error
	invalidated []string
}

var _ service.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) SignUp(_ context.Context, in model.SignUpInput) (model.User, model.SessionToken, error) {
	if in.Email == "" {
		return model.User{}, model.SessionToken{}, errs.Validation("Invalid sign-up payload.",
			errs.Issue{Path: "email", Message: "is required"})
	}
	u := model.User{ID: uuid.Must(uuid.NewV4()), Email: in.Email, FullName: in.FullName}
	return u, model.SessionToken{Token: "new-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, in model.SignInInput, ip string) (model.User, model.SessionToken, error) {
	f.signInIP = ip
	if f.signInErr != nil {
		return model.User{}, model.SessionToken{}, f.signInErr
	}
	for tok, u := range f.byToken {
		if u.Email == in.Email {
			return u, model.SessionToken{Token: tok, ExpiresAt: time.Now().Add(time.Hour)}, nil
		}
	}
	return model.User{}, model.SessionToken{}, errs.New(errs.ErrUnauthorized, "Invalid email or password.")
}

func (f *fakeAuth) CreateSession(context.Context, uuid.UUID) (model.SessionToken, error) {
	return model.SessionToken{}, nil
}

func (f *fakeAuth) ResolveSession(_ context.Context, token string) (model.User, error) {
	u, ok := f.byToken[token]
	if !ok {
		return model.User{}, errs.ErrUnauthorized
	}
	return u, nil
}

func (f *fakeAuth) InvalidateSession(_ context.Context, token string) error {
	f.invalidated = append(f.invalidated, token)
	return nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, id uuid.UUID, in model.ProfileInput) (model.User, error) {
	for _, u := range f.byToken {
		if u.ID == id {
			u.FullName = in.FullName
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeAuth) PurgeExpiredSessions(context.Context) (int64, error) { return 0, nil }

type fakeRecipes struct {
	list       []model.Recipe
	lastFilter model.RecipeFilter
	acc        model.RecipeAccess
	err        error
	panicMsg   string
}

var _ service.RecipeService = (*fakeRecipes)(nil)

func (f *fakeRecipes) Create(_ context.Context, owner model.User, in model.RecipeInput) (model.Recipe, error) {
	if f.err != nil {
		return model.Recipe{}, f.err
	}
	return model.Recipe{ID: uuid.Must(uuid.NewV4()), OwnerID: owner.ID, Name: in.Name, Ingredients: in.Ingredients}, nil
}

func (f *fakeRecipes) Get(context.Context, model.User, uuid.UUID) (model.RecipeAccess, error) {
	return f.acc, f.err
}

func (f *fakeRecipes) Update(_ context.Context, _ model.User, id uuid.UUID, p model.RecipePatch) (model.Recipe, error) {
	if f.err != nil {
		return model.Recipe{}, f.err
	}
	r := model.Recipe{ID: id}
	if p.Name != nil {
		r.Name = *p.Name
	}
	return r, nil
}

func (f *fakeRecipes) Delete(context.Context, model.User, uuid.UUID) error { return f.err }

func (f *fakeRecipes) List(_ context.Context, _ model.User, flt model.RecipeFilter) ([]model.Recipe, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.lastFilter = flt
	return f.list, f.err
}

type fakeShares struct {
	accept model.AcceptResult
	err    error
}

var _ service.ShareService = (*fakeShares)(nil)

func (f *fakeShares) CreateShare(_ context.Context, owner model.User, req model.ShareRequest) (model.ShareResult, error) {
	if f.err != nil {
		return model.ShareResult{}, f.err
	}
	sh := model.RecipeShare{ID: uuid.Must(uuid.NewV4()), RecipeID: req.RecipeID, SharedBy: owner.ID, ShareToken: "tok", Access: model.AccessRead}
	return model.ShareResult{Share: sh, URL: f.ShareURL("tok")}, nil
}

func (f *fakeShares) RevokeShare(context.Context, model.User, uuid.UUID) error { return f.err }

func (f *fakeShares) AcceptShare(context.Context, model.User, string) (model.AcceptResult, error) {
	return f.accept, f.err
}

func (f *fakeShares) ListSent(context.Context, model.User) ([]model.SentShare, error) {
	return []model.SentShare{}, f.err
}

func (f *fakeShares) ListReceived(context.Context, model.User) ([]model.ReceivedShare, error) {
	return []model.ReceivedShare{}, f.err
}

func (f *fakeShares) ShareURL(token string) string { return "http://zest.test/shared/" + token }

type fakeAccess struct {
	acc model.RecipeAccess
	err error
}

var _ service.AccessService = (*fakeAccess)(nil)

func (f *fakeAccess) ResolveAccess(context.Context, model.User, uuid.UUID) (model.RecipeAccess, error) {
	return f.acc, f.err
}

func (f *fakeAccess) ResolveAccessByToken(context.Context, model.User, string) (model.RecipeAccess, error) {
	return f.acc, f.err
}

type fakeAssistant struct {
	draft model.RecipeDraft
	err   error
}

var _ service.AssistantService = (*fakeAssistant)(nil)

func (f *fakeAssistant) ParseRecipe(context.Context, model.User, model.ParseRequest) (model.RecipeDraft, error) {
	return f.draft, f.err
}

func (f *fakeAssistant) AdaptRecipe(context.Context, model.User, model.AdaptRequest) (model.Adaptation, error) {
	return model.Adaptation{}, f.err
}

func (f *fakeAssistant) SuggestFromPantry(context.Context, model.User, model.PantryRequest) ([]model.PantrySuggestion, error) {
	return nil, f.err
}
