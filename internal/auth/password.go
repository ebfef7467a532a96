package auth

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 8

// CheckPassword enforces the password policy and returns a message naming
// the first rule broken, or "" when the password is acceptable.
func CheckPassword(pw string) string {
	if len(pw) < MinPasswordLength {
		return "Password must be at least 8 characters long"
	}
	if len(pw) > 72 {
		return "Password must be at most 72 characters long"
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !digit:
		return "Password must contain at least one number"
	}
	return ""
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var validate = validator.New()

// ValidEmail reports whether email is a bare address such as a@b.co.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
