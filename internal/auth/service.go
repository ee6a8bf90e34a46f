package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/obs"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/stream"
)

// Service composes the credential store, password hasher, lockout machine and
// token issuer into the login/refresh/register/change-password flows.
type Service struct {
	store      Store
	tokens     *TokenIssuer
	now        func() time.Time
	bcryptCost int
	events     *stream.Stream

	perAccount keyedMutex
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithBcryptCost overrides the hashing cost parameter. Tests lower it to keep
// the suite fast.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// WithEvents attaches the security event feed.
func WithEvents(st *stream.Stream) ServiceOption {
	return func(s *Service) { s.events = st }
}

// NewService constructs the authentication orchestrator.
func NewService(store Store, tokens *TokenIssuer, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthResult is the outcome of a flow that may issue tokens. When MFARequired
// is set no tokens were issued and the caller must retry with a code.
type AuthResult struct {
	Pair        TokenPair
	Account     *Account
	MFARequired bool
}

// Register creates an active account with zeroed counters and issues a token
// pair. The email must not already be taken (case-insensitive).
func (s *Service) Register(ctx context.Context, email, password string, role Role) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrBadRequest
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	unlock := s.perAccount.lock(email)
	defer unlock()

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	acc, err := s.store.Save(ctx, &Account{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(acc)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Pair: pair, Account: acc}, nil
}

// Login evaluates the lockout machine, verifies the password, applies the
// matching lockout transition and issues tokens. The whole read-modify-write
// is serialized per account. Failed-attempt bookkeeping is persisted even
// though the login itself fails.
func (s *Service) Login(ctx context.Context, email, password, mfaCode string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}

	unlock := s.perAccount.lock(email)
	defer unlock()

	now := s.now().UTC()
	acc, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		// Same failure as a wrong password; account existence must not leak.
		obs.LoginFailures.Inc()
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if acc.Locked {
		if lockActive(acc, now) {
			return nil, ErrLocked
		}
		// Lock expired: unlock and evaluate this attempt as a fresh login.
		clearLock(acc)
		if acc, err = s.store.Save(ctx, acc); err != nil {
			return nil, err
		}
		s.publish(stream.Event{Type: stream.EventAccountUnlocked, Subject: acc.Email, Detail: "lock expired"})
	}

	if err := VerifyPassword(acc.PasswordHash, password); err != nil {
		return nil, s.failAttempt(ctx, acc, now)
	}

	if acc.MFAEnabled {
		if mfaCode == "" {
			return &AuthResult{Account: acc, MFARequired: true}, nil
		}
		ok, err := VerifyTOTP(acc.MFASecret, mfaCode, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// A wrong second factor counts toward the lockout threshold
			// like a wrong password.
			return nil, s.failAttempt(ctx, acc, now)
		}
	}

	recordSuccess(acc, now)
	if acc, err = s.store.Save(ctx, acc); err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(acc)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Pair: pair, Account: acc}, nil
}

// failAttempt persists the failed-login transition and returns the caller
// facing error: ErrLocked when this attempt crossed the threshold,
// ErrUnauthorized otherwise.
func (s *Service) failAttempt(ctx context.Context, acc *Account, now time.Time) error {
	obs.LoginFailures.Inc()
	lockedNow := recordFailure(acc, now)
	if _, err := s.store.Save(ctx, acc); err != nil {
		return err
	}
	if lockedNow {
		obs.AccountLockouts.Inc()
		s.publish(stream.Event{Type: stream.EventAccountLocked, Subject: acc.Email, Detail: "failed login threshold reached"})
		return ErrLocked
	}
	return ErrUnauthorized
}

// Refresh rotates a refresh token into a brand-new access+refresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Validate(refreshToken, KindRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}
	acc, err := s.store.FindByID(ctx, claims.Subject)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(acc)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Pair: pair, Account: acc}, nil
}

// ChangePassword replaces the stored hash after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrBadRequest
	}
	acc, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	unlock := s.perAccount.lock(acc.Email)
	defer unlock()

	if err := VerifyPassword(acc.PasswordHash, currentPassword); err != nil {
		return ErrBadRequest
	}
	hash, err := HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	acc.PasswordHash = hash
	_, err = s.store.Save(ctx, acc)
	return err
}

// ExternalLogin handles a verified identity from an external provider. The
// provider's own tokens are never forwarded; we always issue our own pair.
// First login creates a passwordless account with the default role.
func (s *Service) ExternalLogin(ctx context.Context, email, displayName, provider string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrBadRequest
	}

	unlock := s.perAccount.lock(email)
	defer unlock()

	now := s.now().UTC()
	acc, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		acc = &Account{
			Email:          email,
			Role:           DefaultRole,
			EmailVerified:  true,
			OAuth2Provider: provider,
		}
		recordSuccess(acc, now)
	case err != nil:
		return nil, err
	default:
		recordSuccess(acc, now)
		if acc.OAuth2Provider == "" {
			acc.OAuth2Provider = provider
		}
	}
	if acc, err = s.store.Save(ctx, acc); err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(acc)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Pair: pair, Account: acc}, nil
}

// Lock is the administrative lock: the account stays locked with no expiry
// (nil LockedUntil) until an operator unlocks it. Failed-attempt lockouts
// expire on their own; this one never does.
func (s *Service) Lock(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	unlock := s.perAccount.lock(email)
	defer unlock()

	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	acc.Locked = true
	acc.LockedUntil = nil
	if _, err := s.store.Save(ctx, acc); err != nil {
		return err
	}
	obs.AccountLockouts.Inc()
	s.publish(stream.Event{Type: stream.EventAccountLocked, Subject: acc.Email, Detail: "administrative lock"})
	return nil
}

// Unlock is the administrative unlock: it resets lockout state regardless of
// the lock expiry.
func (s *Service) Unlock(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	unlockKey := s.perAccount.lock(email)
	defer unlockKey()

	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	clearLock(acc)
	if _, err := s.store.Save(ctx, acc); err != nil {
		return err
	}
	s.publish(stream.Event{Type: stream.EventAccountUnlocked, Subject: acc.Email, Detail: "administrative unlock"})
	return nil
}

// Authenticate validates an access token and returns the principal it
// carries. The role is trusted from the token for its lifetime; it is not
// re-resolved against the store.
func (s *Service) Authenticate(token string) (Principal, error) {
	claims, err := s.tokens.Validate(token, KindAccess)
	if err != nil {
		return Principal{}, err
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	return Principal{AccountID: claims.Subject, Email: claims.Email, Role: role}, nil
}

func (s *Service) publish(evt stream.Event) {
	if s.events != nil {
		s.events.Publish(evt)
	}
}
