package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueResolveRoundTrip(t *testing.T) {
	r := NewResolver("test-secret", time.Hour)
	tok, err := r.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got := r.Resolve(tok); got != "alice" {
		t.Fatalf("Resolve = %q, want alice", got)
	}
}

func TestResolveFallsBackToGuest(t *testing.T) {
	r := NewResolver("test-secret", time.Hour)

	cases := map[string]string{
		"empty":   "",
		"garbage": "not-a-jwt-at-all",
	}
	for name, tok := range cases {
		if got := r.Resolve(tok); got != GuestName {
			t.Fatalf("%s: Resolve = %q, want %q", name, got, GuestName)
		}
	}
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	issuer := NewResolver("secret-a", time.Hour)
	verifier := NewResolver("secret-b", time.Hour)
	tok, _ := issuer.Issue("mallory")
	if got := verifier.Resolve(tok); got != GuestName {
		t.Fatalf("token with wrong secret resolved to %q", got)
	}
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	r := NewResolver("test-secret", time.Hour)
	claims := jwt.MapClaims{
		"username": "alice",
		"iat":      time.Now().Add(-2 * time.Hour).Unix(),
		"exp":      time.Now().Add(-time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := r.Resolve(tok); got != GuestName {
		t.Fatalf("expired token resolved to %q", got)
	}
}

func TestResolveRejectsUnexpectedSigningMethod(t *testing.T) {
	r := NewResolver("test-secret", time.Hour)
	// alg=none tokens must never resolve
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := r.Resolve(tok); got != GuestName {
		t.Fatalf("alg=none token resolved to %q", got)
	}
}
