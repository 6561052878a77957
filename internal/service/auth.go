// Package service contains the application services: accounts and sessions,
// access resolution, sharing, recipes and the AI assistant.
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
	"github.com/and161185/zest/internal/limiter"
	"github.com/and161185/zest/internal/model"
	"github.com/and161185/zest/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// DefaultSessionTTL is the absolute lifetime of a session.
const DefaultSessionTTL = 14 * 24 * time.Hour

var errBadCredentials = errs.New(errs.ErrUnauthorized, "Invalid email or password.")

// AuthService defines account and session operations.
type AuthService interface {
	// SignUp creates an account and opens a session for it.
	SignUp(ctx context.Context, in model.SignUpInput) (model.User, model.SessionToken, error)
	// SignIn applies rate limiting by (email, ip) and opens a session.
	SignIn(ctx context.Context, in model.SignInInput, ip string) (model.User, model.SessionToken, error)
	// CreateSession persists a fresh session for userID.
	CreateSession(ctx context.Context, userID uuid.UUID) (model.SessionToken, error)
	// ResolveSession returns the user of a live session or errs.ErrUnauthorized.
	ResolveSession(ctx context.Context, token string) (model.User, error)
	// InvalidateSession deletes the session; unknown tokens are fine.
	InvalidateSession(ctx context.Context, token string) error
	// UpdateProfile changes the display name.
	UpdateProfile(ctx context.Context, userID uuid.UUID, in model.ProfileInput) (model.User, error)
	// PurgeExpiredSessions deletes sessions past their expiry.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	lim      limiter.Limiter
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService constructs AuthService. A nil limiter disables rate limiting;
// a non-positive ttl means DefaultSessionTTL.
func NewAuthService(
	users repository.UserRepository, sessions repository.SessionRepository, lim limiter.Limiter, ttl time.Duration,
) *AuthServiceImpl {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthServiceImpl{users: users, sessions: sessions, lim: lim, ttl: ttl, now: time.Now}
}

// Register creates the account without opening a session.
func (s *AuthServiceImpl) Register(ctx context.Context, in model.SignUpInput) (model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = convert.NormalizeEmail(in.Email)
	if err := checkStruct("Invalid sign-up payload.", in); err != nil {
		return model.User{}, err
	}

	digest, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           uid,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.User{}, errs.New(errs.ErrAlreadyExists, "An account with this email already exists.")
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// SignUp registers the account and opens a session.
func (s *AuthServiceImpl) SignUp(ctx context.Context, in model.SignUpInput) (model.User, model.SessionToken, error) {
	u, err := s.Register(ctx, in)
	if err != nil {
		return model.User{}, model.SessionToken{}, err
	}
	tok, err := s.CreateSession(ctx, u.ID)
	if err != nil {
		return model.User{}, model.SessionToken{}, err
	}
	return u, tok, nil
}

// SignIn authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) SignIn(ctx context.Context, in model.SignInInput, ip string) (model.User, model.SessionToken, error) {
	in.Email = convert.NormalizeEmail(in.Email)
	if err := checkStruct("Invalid sign-in payload.", in); err != nil {
		return model.User{}, model.SessionToken{}, err
	}
	ipHash := limiter.HashIP(ip)

	if s.lim != nil {
		allowed, _, err := s.lim.Allow(ctx, in.Email, ipHash)
		if err != nil {
			return model.User{}, model.SessionToken{}, err
		}
		if !allowed {
			return model.User{}, model.SessionToken{}, errs.New(errs.ErrRateLimited, "Too many sign-in attempts. Try again later.")
		}
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.User{}, model.SessionToken{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword(in.Password, u.PasswordHash) {
		if s.lim != nil {
			if blocked, _, ferr := s.lim.Failure(ctx, in.Email, ipHash); ferr == nil && blocked {
				return model.User{}, model.SessionToken{}, errs.New(errs.ErrRateLimited, "Too many sign-in attempts. Try again later.")
			}
		}
		// unknown email and wrong password look the same
		return model.User{}, model.SessionToken{}, errBadCredentials
	}

	if s.lim != nil {
		_ = s.lim.Success(ctx, in.Email, ipHash)
	}

	tok, err := s.CreateSession(ctx, u.ID)
	if err != nil {
		return model.User{}, model.SessionToken{}, err
	}
	return *u, tok, nil
}

// CreateSession issues a random 256-bit token valid for the configured TTL.
func (s *AuthServiceImpl) CreateSession(ctx context.Context, userID uuid.UUID) (model.SessionToken, error) {
	token, err := pkgcrypto.NewToken()
	if err != nil {
		return model.SessionToken{}, err
	}
	sid, err := uuid.NewV4()
	if err != nil {
		return model.SessionToken{}, err
	}
	now := s.now().UTC()
	sess := model.Session{ID: sid, UserID: userID, Token: token, ExpiresAt: now.Add(s.ttl), CreatedAt: now}
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return model.SessionToken{}, fmt.Errorf("create session: %w", err)
	}
	return model.SessionToken{Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// ResolveSession looks the token up on every call; there is no cache.
func (s *AuthServiceImpl) ResolveSession(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, errs.ErrUnauthorized
	}
	u, err := s.sessions.GetUserByToken(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, errs.ErrUnauthorized
		}
		return model.User{}, err
	}
	return *u, nil
}

// InvalidateSession removes the session row.
func (s *AuthServiceImpl) InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteByToken(ctx, token)
}

// UpdateProfile trims and stores a new display name.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, in model.ProfileInput) (model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := checkStruct("Invalid profile payload.", in); err != nil {
		return model.User{}, err
	}
	u, err := s.users.UpdateFullName(ctx, userID, in.FullName)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// PurgeExpiredSessions deletes sessions whose expiry has passed.
func (s *AuthServiceImpl) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now().UTC())
}
