package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	tok, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, err := m.ValidateToken(tok)
	if err != nil || id != 42 {
		t.Fatalf("ValidateToken = %d, %v", id, err)
	}
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	tok, err := m.GenerateToken(7)
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := m.ValidateToken(tok); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}
	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := m.ValidateToken(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	foreign, _ := NewTokenManager("other-secret", time.Hour).GenerateToken(1)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	blank, _ := noSubject.SignedString([]byte("test-secret"))

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})
	forever, _ := noExpiry.SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"alg none":       unsigned,
		"no subject":     blank,
		"no expiry":      forever,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.ValidateToken(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
