package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testIssuer(t *testing.T, opts ...IssuerOption) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer([]byte("test-secret"), opts...)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return iss
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueAndValidatePair(t *testing.T) {
	iss := testIssuer(t)
	acc := &Account{ID: "acc-1", Email: "user@example.com", Role: RoleManager}

	pair, err := iss.IssuePair(acc)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("refresh expiry %v should be after access expiry %v",
			pair.RefreshExpiresAt, pair.AccessExpiresAt)
	}

	claims, err := iss.Validate(pair.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("Validate access: %v", err)
	}
	if claims.Subject != "acc-1" || claims.Email != "user@example.com" || claims.Role != "MANAGER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}

	if _, err := iss.Validate(pair.RefreshToken, KindRefresh); err != nil {
		t.Fatalf("Validate refresh: %v", err)
	}
}

func TestValidateRejectsKindMismatch(t *testing.T) {
	iss := testIssuer(t)
	pair, err := iss.IssuePair(&Account{ID: "acc-1", Email: "u@e.com", Role: RoleEmployee})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := iss.Validate(pair.RefreshToken, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh-as-access: got %v, want ErrInvalidToken", err)
	}
	if _, err := iss.Validate(pair.AccessToken, KindRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access-as-refresh: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	iss := testIssuer(t, WithIssuerClock(clock), WithAccessTTL(time.Minute))

	pair, err := iss.IssuePair(&Account{ID: "acc-1", Email: "u@e.com", Role: RoleEmployee})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := iss.Validate(pair.AccessToken, KindAccess); err != nil {
		t.Fatalf("validate before expiry: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := iss.Validate(pair.AccessToken, KindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("validate after expiry: got %v, want ErrTokenExpired", err)
	}
}

func TestValidateTamperedToken(t *testing.T) {
	iss := testIssuer(t)
	pair, err := iss.IssuePair(&Account{ID: "acc-1", Email: "u@e.com", Role: RoleEmployee})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	parts := strings.Split(pair.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := iss.Validate(tampered, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered signature: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	iss := testIssuer(t)
	other, err := NewTokenIssuer([]byte("other-secret"))
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	pair, err := other.IssuePair(&Account{ID: "acc-1", Email: "u@e.com", Role: RoleEmployee})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := iss.Validate(pair.AccessToken, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign secret: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateMalformedInput(t *testing.T) {
	iss := testIssuer(t)
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b"} {
		_, err := iss.Validate(token, KindAccess)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Validate(%q): got %v, want ErrTokenMalformed", token, err)
		}
	}
}
