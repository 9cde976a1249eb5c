package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-for-jwt"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-123", "creator")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user ID user-123, got %q", claims.UserID)
	}
	if claims.Role != "creator" {
		t.Errorf("expected role creator, got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-123", "viewer")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := ValidateToken("another-secret", token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not.a.token"); err == nil {
		t.Error("expected validation to fail for malformed token")
	}
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123", Role: "admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateToken(testSecret, signed); err == nil {
		t.Error("expected validation to reject alg=none token")
	}
}

func TestTokenCarriesExpiry(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-123", "viewer")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected expiry to be set")
	}
	if claims.IssuedAt == nil {
		t.Fatal("expected issued-at to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != TokenDuration {
		t.Errorf("expected token lifetime %v, got %v", TokenDuration, got)
	}
}
