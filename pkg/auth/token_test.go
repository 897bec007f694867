package auth

import (
	"testing"
	"time"
)

func TestNewTokenManagerEmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret key")
	}
}

func TestTokenGenerateValidate(t *testing.T) {
	manager, err := NewTokenManager("test-secret-key", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := manager.Generate("user-123", "admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want user-123", claims.Subject)
	}
}

func TestTokenValidateWrongSecret(t *testing.T) {
	issuer, _ := NewTokenManager("secret-one", time.Hour)
	verifier, _ := NewTokenManager("secret-two", time.Hour)

	token, err := issuer.Generate("user-123", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Fatal("expected validation failure with mismatched secret")
	}
}

func TestTokenValidateExpired(t *testing.T) {
	manager, _ := NewTokenManager("test-secret-key", -time.Minute)

	token, err := manager.Generate("user-123", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestTokenValidateGarbage(t *testing.T) {
	manager, _ := NewTokenManager("test-secret-key", time.Hour)
	if _, err := manager.Validate("not.a.token"); err == nil {
		t.Fatal("expected validation failure for malformed token")
	}
}
