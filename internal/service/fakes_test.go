package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/and161185/zest/internal/convert"
	"github.com/and161185/zest/internal/errs"
	"github.com/and161185/zest/internal/limiter"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// memStore is an in-memory database shared by the fake repositories. It
// enforces the same uniqueness rules as the schema.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]model.User
	sessions map[string]model.Session
	recipes  map[uuid.UUID]model.Recipe
	shares   map[uuid.UUID]model.RecipeShare
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]model.User{},
		sessions: map[string]model.Session{},
		recipes:  map[uuid.UUID]model.Recipe{},
		shares:   map[uuid.UUID]model.RecipeShare{},
	}
}

type (
	memUsers    struct{ *memStore }
	memSessions struct{ *memStore }
	memRecipes  struct{ *memStore }
	memShares   struct{ *memStore }
)

var (
	_ repository.UserRepository    = memUsers{}
	_ repository.SessionRepository = memSessions{}
	_ repository.RecipeRepository  = memRecipes{}
	_ repository.ShareRepository   = memShares{}
)

/************ users ************/

func (m memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m memUsers) UpdateFullName(_ context.Context, id uuid.UUID, fullName string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u.FullName = fullName
	m.users[id] = u
	return &u, nil
}

/************ sessions ************/

func (m memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.sessions[s.Token]; dup {
		return errs.ErrAlreadyExists
	}
	m.sessions[s.Token] = *s
	return nil
}

func (m memSessions) GetUserByToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, errs.ErrNotFound
	}
	u, ok := m.users[s.UserID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (m memSessions) DeleteByToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, tok)
			n++
		}
	}
	return n, nil
}

/************ recipes ************/

func (m memRecipes) Create(_ context.Context, r *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[r.ID] = *r
	return nil
}

func (m memRecipes) GetByID(_ context.Context, id uuid.UUID) (*model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &r, nil
}

func (m memRecipes) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*model.Recipe, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil || r.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	return r, nil
}

func (m memRecipes) Update(_ context.Context, ownerID, id uuid.UUID, p model.RecipePatch, now time.Time) (*model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok || r.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Cuisine.Set {
		r.Cuisine = p.Cuisine.Ptr()
	}
	if p.PrepTimeMinutes.Set {
		r.PrepTimeMinutes = p.PrepTimeMinutes.Ptr()
	}
	if p.CookTimeMinutes.Set {
		r.CookTimeMinutes = p.CookTimeMinutes.Ptr()
	}
	if p.Servings.Set {
		r.Servings = p.Servings.Ptr()
	}
	if p.Ingredients != nil {
		r.Ingredients = *p.Ingredients
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	if p.Notes.Set {
		r.Notes = p.Notes.Ptr()
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Tags != nil {
		r.Tags = *p.Tags
	}
	r.UpdatedAt = now
	m.recipes[id] = r
	return &r, nil
}

func (m memRecipes) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok || r.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(m.recipes, id)
	for sid, s := range m.shares {
		if s.RecipeID == id {
			delete(m.shares, sid)
		}
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m memRecipes) List(_ context.Context, ownerID uuid.UUID, f model.RecipeFilter) ([]model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Recipe, 0)
	for _, r := range m.recipes {
		if r.OwnerID != ownerID {
			continue
		}
		if f.Query != "" && !containsFold(r.Name, f.Query) {
			continue
		}
		if f.Ingredient != "" {
			enc, _ := convert.EncodeIngredients(r.Ingredients)
			if !containsFold(enc, f.Ingredient) {
				continue
			}
		}
		if f.Cuisine != "" && (r.Cuisine == nil || !containsFold(*r.Cuisine, f.Cuisine)) {
			continue
		}
		if f.MaxPrepTime != nil && (r.PrepTimeMinutes == nil || *r.PrepTimeMinutes > *f.MaxPrepTime) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

/************ shares ************/

// clashes reports whether s would violate a uniqueness key held by another row.
func (m memShares) clashes(s model.RecipeShare) bool {
	for id, x := range m.shares {
		if id == s.ID {
			continue
		}
		if x.ShareToken == s.ShareToken {
			return true
		}
		if x.RecipeID != s.RecipeID || !x.Active() || !s.Active() {
			continue
		}
		if s.SharedWithUserID.Valid && x.SharedWithUserID.Valid && x.SharedWithUserID.UUID == s.SharedWithUserID.UUID {
			return true
		}
		if s.SharedWithEmail != nil && x.SharedWithEmail != nil && *x.SharedWithEmail == *s.SharedWithEmail {
			return true
		}
	}
	return false
}

func (m memShares) Create(_ context.Context, s *model.RecipeShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clashes(*s) {
		return errs.ErrConflict
	}
	m.shares[s.ID] = *s
	return nil
}

func (m memShares) find(match func(model.RecipeShare) bool) (*model.RecipeShare, error) {
	var found []model.RecipeShare
	for _, s := range m.shares {
		if match(s) {
			found = append(found, s)
		}
	}
	if len(found) == 0 {
		return nil, errs.ErrNotFound
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Active() != found[j].Active() {
			return found[i].Active()
		}
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	return &found[0], nil
}

func (m memShares) FindActiveByToken(_ context.Context, token string) (*model.RecipeShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(s model.RecipeShare) bool { return s.ShareToken == token && s.Active() })
}

func (m memShares) FindActiveForRecipient(_ context.Context, recipeID, userID uuid.UUID, email string) (*model.RecipeShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(s model.RecipeShare) bool {
		if s.RecipeID != recipeID || !s.Active() {
			return false
		}
		return (s.SharedWithUserID.Valid && s.SharedWithUserID.UUID == userID) ||
			(s.SharedWithEmail != nil && *s.SharedWithEmail == email)
	})
}

func (m memShares) FindForTarget(_ context.Context, recipeID uuid.UUID, userID uuid.NullUUID, email *string) (*model.RecipeShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !userID.Valid && email == nil {
		return nil, errs.ErrNotFound
	}
	return m.find(func(s model.RecipeShare) bool {
		if s.RecipeID != recipeID {
			return false
		}
		byUser := userID.Valid && s.SharedWithUserID.Valid && s.SharedWithUserID.UUID == userID.UUID
		byMail := email != nil && s.SharedWithEmail != nil && *s.SharedWithEmail == *email
		return byUser || byMail
	})
}

func (m memShares) FindActiveBoundToUser(_ context.Context, recipeID, userID uuid.UUID) (*model.RecipeShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(s model.RecipeShare) bool {
		return s.RecipeID == recipeID && s.Active() && s.SharedWithUserID.Valid && s.SharedWithUserID.UUID == userID
	})
}

func (m memShares) Reactivate(_ context.Context, id uuid.UUID, token string, userID uuid.NullUUID, email *string) (*model.RecipeShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shares[id]
	if !ok || s.Active() {
		return nil, errs.ErrNotFound
	}
	s.ShareToken, s.RevokedAt, s.SharedWithUserID, s.SharedWithEmail = token, nil, userID, email
	if m.clashes(s) {
		return nil, errs.ErrConflict
	}
	m.shares[id] = s
	return &s, nil
}

func (m memShares) Revoke(_ context.Context, id, sharedBy uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shares[id]
	if !ok || s.SharedBy != sharedBy || !s.Active() {
		return errs.ErrNotFound
	}
	s.RevokedAt = &now
	m.shares[id] = s
	return nil
}

func (m memShares) Bind(_ context.Context, id, userID uuid.UUID, email string) (*model.RecipeShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shares[id]
	if !ok || !s.Active() {
		return nil, errs.ErrNotFound
	}
	s.SharedWithUserID = uuid.NullUUID{UUID: userID, Valid: true}
	s.SharedWithEmail = &email
	if m.clashes(s) {
		return nil, errs.ErrConflict
	}
	m.shares[id] = s
	return &s, nil
}

func (m memShares) ListSent(_ context.Context, owner uuid.UUID) ([]model.SentShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SentShare, 0)
	for _, s := range m.shares {
		if s.SharedBy != owner {
			continue
		}
		var name *string
		if s.SharedWithUserID.Valid {
			if u, ok := m.users[s.SharedWithUserID.UUID]; ok {
				name = &u.FullName
			}
		}
		out = append(out, model.SentShare{
			ID:               s.ID,
			RecipeID:         s.RecipeID,
			RecipeName:       m.recipes[s.RecipeID].Name,
			SharedWithEmail:  s.SharedWithEmail,
			SharedWithUserID: s.SharedWithUserID,
			RecipientName:    name,
			ShareToken:       s.ShareToken,
			RevokedAt:        s.RevokedAt,
			Active:           s.Active(),
			CreatedAt:        s.CreatedAt,
		})
	}
	return out, nil
}

func (m memShares) ListReceived(_ context.Context, userID uuid.UUID, email string) ([]model.ReceivedShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ReceivedShare, 0)
	for _, s := range m.shares {
		if !s.Active() {
			continue
		}
		if !(s.SharedWithUserID.Valid && s.SharedWithUserID.UUID == userID) &&
			!(s.SharedWithEmail != nil && *s.SharedWithEmail == email) {
			continue
		}
		r := m.recipes[s.RecipeID]
		by := m.users[s.SharedBy]
		out = append(out, model.ReceivedShare{
			ID:              s.ID,
			RecipeID:        r.ID,
			RecipeName:      r.Name,
			Cuisine:         r.Cuisine,
			Status:          r.Status,
			PrepTimeMinutes: r.PrepTimeMinutes,
			Tags:            r.Tags,
			SharedByName:    by.FullName,
			SharedByEmail:   by.Email,
			ShareToken:      s.ShareToken,
			CreatedAt:       s.CreatedAt,
		})
	}
	return out, nil
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, nil
}

/************ wiring ************/

// app wires every service over one memStore.
type app struct {
	store   *memStore
	auth    *AuthServiceImpl
	access  *AccessServiceImpl
	shares  *ShareServiceImpl
	recipes *RecipeServiceImpl
}

func newApp() *app {
	st := newMemStore()
	users, sessions, recipes, shares := memUsers{st}, memSessions{st}, memRecipes{st}, memShares{st}
	access := NewAccessService(recipes, shares)
	return &app{
		store:   st,
		auth:    NewAuthService(users, sessions, nil, 0),
		access:  access,
		shares:  NewShareService(users, recipes, shares, "https://zest.test/"),
		recipes: NewRecipeService(recipes, access),
	}
}

// addUser stores an account directly, skipping password hashing.
func (a *app) addUser(t *testing.T, name, email string) model.User {
	t.Helper()
	u := model.User{ID: uuid.Must(uuid.NewV4()), Email: email, FullName: name, CreatedAt: time.Now().UTC()}
	if err := (memUsers{a.store}).Create(context.Background(), &u); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return u
}

// addRecipe creates a minimal valid recipe through the service.
func (a *app) addRecipe(t *testing.T, owner model.User, name string) model.Recipe {
	t.Helper()
	r, err := a.recipes.Create(context.Background(), owner, model.RecipeInput{
		Name:         name,
		Ingredients:  []model.Ingredient{{Item: "water"}},
		Instructions: "Boil.",
	})
	if err != nil {
		t.Fatalf("add recipe: %v", err)
	}
	return r
}
