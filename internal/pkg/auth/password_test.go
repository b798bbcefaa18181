package auth

import (
	"testing"

	"github.com/your-org/procurement-backend/internal/config"
)

func testPasswordManager() *PasswordManager {
	cfg := &config.Config{}
	cfg.Security.BcryptCost = 4 // minimum cost keeps the tests fast
	return NewPasswordManager(cfg)
}

func TestValidatePassword(t *testing.T) {
	pm := testPasswordManager()

	valid := []string{
		"Str0ng!Pass",
		"Another#9Good",
		"Xk2$mNpQr7",
	}
	for _, pw := range valid {
		if err := pm.ValidatePassword(pw); err != nil {
			t.Errorf("ValidatePassword(%q) should pass, got %v", pw, err)
		}
	}

	invalid := []struct {
		name string
		pw   string
	}{
		{"too short", "Ab1!x"},
		{"no uppercase", "weak1ng!pass"},
		{"no lowercase", "STR0NG!PASS"},
		{"no number", "Strong!Pass"},
		{"no special char", "Str0ngPass"},
		{"common password", "Password123!"},
	}
	for _, tt := range invalid {
		if err := pm.ValidatePassword(tt.pw); err == nil {
			t.Errorf("ValidatePassword(%q) should fail (%s)", tt.pw, tt.name)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	pm := testPasswordManager()

	hash, err := pm.HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "Str0ng!Pass" {
		t.Error("Hash must not equal the plaintext")
	}

	if err := pm.VerifyPassword("Str0ng!Pass", hash); err != nil {
		t.Errorf("VerifyPassword with correct password failed: %v", err)
	}
	if err := pm.VerifyPassword("Wr0ng!Pass", hash); err == nil {
		t.Error("VerifyPassword with wrong password should fail")
	}
}

func TestHashRejectsWeakPassword(t *testing.T) {
	pm := testPasswordManager()
	if _, err := pm.HashPassword("short"); err == nil {
		t.Error("HashPassword should reject a password that fails validation")
	}
}
