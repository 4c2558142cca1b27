package jwt

import (
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)

	token, err := signer.Sign("user-1", true)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin lost in round trip")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewSigner("secret-a", time.Hour).Sign("user-1", false)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := NewSigner("secret-b", time.Hour).Parse(token); err == nil {
		t.Error("expected parse failure with a different secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewSigner("test-secret", -time.Minute).Sign("user-1", false)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := NewSigner("test-secret", time.Hour).Parse(token); err == nil {
		t.Error("expected parse failure for expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewSigner("test-secret", time.Hour).Parse("not.a.token"); err == nil {
		t.Error("expected parse failure for malformed token")
	}
}
