package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, uid string, expiresIn time.Duration) string {
	t.Helper()

	claims := sessionClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return raw
}

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret)

	uid, err := v.Verify(mintToken(t, "alice", time.Hour))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if uid != "alice" {
		t.Fatalf("expected alice, got %q", uid)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier(testSecret)

	if _, err := v.Verify(mintToken(t, "alice", -time.Hour)); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewVerifier("other-secret")

	if _, err := v.Verify(mintToken(t, "alice", time.Hour)); err == nil {
		t.Fatalf("expected bad signature to fail")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewVerifier(testSecret)

	if _, err := v.Verify("not-a-token"); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestNotifierFanOut(t *testing.T) {
	n := NewNotifier()

	var got []Event
	n.Subscribe(func(ev Event) { got = append(got, ev) })
	n.Subscribe(func(ev Event) { got = append(got, ev) })

	n.Fire(EventSignIn)
	n.Fire(EventSignOut)

	if len(got) != 4 {
		t.Fatalf("expected 4 deliveries, got %d", len(got))
	}
	if got[0] != EventSignIn || got[3] != EventSignOut {
		t.Fatalf("unexpected event order: %v", got)
	}
}
