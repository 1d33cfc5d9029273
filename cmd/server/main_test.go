package main

import (
	"strings"
	"testing"

	"github.com/readrover/internal/config"
)

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"":                                   true,
		"short":                              true,
		"change-me-change-me-change-me-1234": true,
		"k7Qv2pXz9LmN4rTb8WcY1sHd6FgJ3uEa":   false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q) = %v, want %v", secret, got, want)
		}
	}
}

func TestCheckSecretsFailsOnlyInRelease(t *testing.T) {
	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: "change-me-in-production"},
		UserJWT: config.JWTConfig{SecretKey: "k7Qv2pXz9LmN4rTb8WcY1sHd6FgJ3uEa"},
	}
	if err := checkSecrets(cfg, false); err != nil {
		t.Fatalf("non-release should only warn: %v", err)
	}
	err := checkSecrets(cfg, true)
	if err == nil || !strings.Contains(err.Error(), "jwt.secret") || strings.Contains(err.Error(), "user_jwt") {
		t.Fatalf("release should reject weak jwt.secret only, got %v", err)
	}
}
