package service

import (
	"fmt"
	"unicode"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// checkPassword returns one message per policy rule the password breaks.
// An empty result means the password is acceptable.
func checkPassword(policy domain.PasswordPolicy, password string) []string {
	var reasons []string

	if len([]rune(password)) < policy.MinLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at least %d characters.", policy.MinLength))
	}

	var hasDigit, hasLower, hasUpper, hasOther bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		unique[r] = struct{}{}
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasOther = true
		}
	}

	if policy.RequireNonAlphanum && !hasOther {
		reasons = append(reasons, "Passwords must have at least one non alphanumeric character.")
	}
	if policy.RequireDigit && !hasDigit {
		reasons = append(reasons, "Passwords must have at least one digit ('0'-'9').")
	}
	if policy.RequireLowercase && !hasLower {
		reasons = append(reasons, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if policy.RequireUppercase && !hasUpper {
		reasons = append(reasons, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if policy.RequiredUniqueChars > 1 && len(unique) < policy.RequiredUniqueChars {
		reasons = append(reasons, fmt.Sprintf("Passwords must use at least %d different characters.", policy.RequiredUniqueChars))
	}
	return reasons
}
