package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func initTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret: %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	initTestSecret(t)

	tokenString, err := GenerateJWT(42, "Manager")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	token, err := VerifyJWT(tokenString)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}

	if userID, ok := claims["user_id"].(float64); !ok || uint(userID) != 42 {
		t.Fatalf("unexpected user_id claim: %v", claims["user_id"])
	}
	if role, ok := claims["role"].(string); !ok || role != "Manager" {
		t.Fatalf("unexpected role claim: %v", claims["role"])
	}
}

func TestVerifyJWT_RejectsTamperedToken(t *testing.T) {
	initTestSecret(t)

	tokenString, err := GenerateJWT(42, "Member")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	tampered := tokenString[:len(tokenString)-2] + "xx"

	if _, err := VerifyJWT(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestVerifyJWT_RejectsGarbage(t *testing.T) {
	initTestSecret(t)

	if _, err := VerifyJWT("not-a-token"); err == nil {
		t.Fatal("expected garbage token to be rejected")
	}
}

func TestInitJWTSecret_RequiresEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if err := InitJWTSecret(); err == nil {
		t.Fatal("expected error when JWT_SECRET is unset")
	}
}
