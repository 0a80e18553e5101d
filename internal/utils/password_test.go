package utils

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "secret123" {
		t.Error("hash should not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	hash1, _ := HashPassword("secret123")
	hash2, _ := HashPassword("secret123")

	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, _ := HashPassword("secret123")

	if !CheckPassword("secret123", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password should not verify")
	}
	if CheckPassword("secret123", "not-a-hash") {
		t.Error("malformed hash should not verify")
	}
}
