package service

import (
	"fmt"
	"unicode"

	"github.com/readrover/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只处理前 72 字节
const maxPasswordBytes = 72

type passwordPolicyError struct {
	rule string
}

func (e passwordPolicyError) Error() string {
	return "weak password: " + e.rule
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword || target == ErrValidation
}

// Rule 违反的策略描述
func (e passwordPolicyError) Rule() string {
	return e.rule
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if len(password) > maxPasswordBytes {
		return passwordPolicyError{rule: fmt.Sprintf("max %d bytes", maxPasswordBytes)}
	}
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{rule: fmt.Sprintf("min %d characters", policy.MinLength)}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return passwordPolicyError{rule: "requires an upper-case letter"}
	}
	if policy.RequireLower && !hasLower {
		return passwordPolicyError{rule: "requires a lower-case letter"}
	}
	if policy.RequireNumber && !hasNumber {
		return passwordPolicyError{rule: "requires a digit"}
	}
	if policy.RequireSpecial && !hasSpecial {
		return passwordPolicyError{rule: "requires a special character"}
	}
	return nil
}

// HashPassword bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword 比对哈希与明文
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
