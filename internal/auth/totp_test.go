package auth

import (
	"encoding/base32"
	"testing"
	"time"
)

const totpTestSecret = "JBSWY3DPEHPK3PXP"

func totpCodeAt(t *testing.T, secretBase32 string, at time.Time) string {
	t.Helper()
	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secretBase32)
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	return hotp(secret, at.Unix()/totpPeriod)
}

func TestVerifyTOTPAcceptsCurrentCode(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	code := totpCodeAt(t, totpTestSecret, now)

	ok, err := VerifyTOTP(totpTestSecret, code, now)
	if err != nil {
		t.Fatalf("VerifyTOTP: %v", err)
	}
	if !ok {
		t.Fatal("current code should verify")
	}
}

func TestVerifyTOTPAcceptsAdjacentSteps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	for _, delta := range []time.Duration{-30 * time.Second, 30 * time.Second} {
		code := totpCodeAt(t, totpTestSecret, now.Add(delta))
		ok, err := VerifyTOTP(totpTestSecret, code, now)
		if err != nil {
			t.Fatalf("VerifyTOTP(%v): %v", delta, err)
		}
		if !ok {
			t.Fatalf("code one step away (%v) should verify", delta)
		}
	}
}

func TestVerifyTOTPRejectsStaleCode(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	code := totpCodeAt(t, totpTestSecret, now.Add(-2*30*time.Second))
	ok, err := VerifyTOTP(totpTestSecret, code, now)
	if err != nil {
		t.Fatalf("VerifyTOTP: %v", err)
	}
	if ok {
		t.Fatal("code two steps away must not verify")
	}
}

func TestVerifyTOTPRejectsBadInput(t *testing.T) {
	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		ok, err := VerifyTOTP(totpTestSecret, code, now)
		if err != nil {
			t.Fatalf("VerifyTOTP(%q): %v", code, err)
		}
		if ok {
			t.Fatalf("code %q must not verify", code)
		}
	}
}

func TestVerifyTOTPMalformedSecret(t *testing.T) {
	if _, err := VerifyTOTP("not base32!!", "123456", time.Now()); err == nil {
		t.Fatal("expected error for malformed secret")
	}
}
