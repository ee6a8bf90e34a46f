package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the single role attached to an account. The set is closed; there is
// no per-account role collection.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleHRManager Role = "HR_MANAGER"
	RoleManager   Role = "MANAGER"
	RoleEmployee  Role = "EMPLOYEE"
)

// DefaultRole is assigned to accounts created through an external identity
// provider, where no role was chosen at registration time.
const DefaultRole = RoleEmployee

// ParseRole normalizes and validates a role label.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleHRManager, RoleManager, RoleEmployee:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrBadRequest, s)
}

// Account is a credential record. PasswordHash is empty for accounts created
// via an external identity provider.
type Account struct {
	ID             string
	Email          string
	PasswordHash   string
	Role           Role
	OAuth2Provider string

	MFAEnabled    bool
	MFASecret     string
	EmailVerified bool

	// Lockout state. Locked implies LockedUntil is set; an account with
	// Locked and a nil LockedUntil stays locked until an operator unlocks it.
	Locked         bool
	FailedAttempts int
	LockedUntil    *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy so store implementations never hand out aliased
// pointers to their internal state.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		cp.LockedUntil = &t
	}
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		cp.LastLoginAt = &t
	}
	return &cp
}

// NormalizeEmail lower-cases and trims an email so lookups are
// case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TokenPair carries freshly issued access and refresh tokens.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Principal is the authenticated identity threaded through request handling.
// Access decisions take it as an explicit argument; there is no ambient
// security context.
type Principal struct {
	AccountID string
	Email     string
	Role      Role
}

// HasAnyRole reports whether the principal holds one of the given roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
