package auth

import (
	"testing"
	"time"
)

func TestGenerateResetToken(t *testing.T) {
	first, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}

	// 32 random bytes, hex encoded.
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if first == second {
		t.Fatal("tokens must be unique")
	}
}

func TestResetTokenExpired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(ResetTokenLifetime)

	if ResetTokenExpired(&expires, expires.Add(-time.Second)) {
		t.Fatal("token must be valid one second before expiry")
	}
	if !ResetTokenExpired(&expires, expires.Add(time.Second)) {
		t.Fatal("token must be expired one second after expiry")
	}
	if ResetTokenExpired(&expires, expires) {
		t.Fatal("token expires strictly after the deadline")
	}
	if !ResetTokenExpired(nil, issued) {
		t.Fatal("missing expiry must read as expired")
	}
}
