package domain

// JWTSettings is the token configuration loaded once at start-up. It is
// passed by value and never mutated afterwards.
type JWTSettings struct {
	Secret      string
	Issuer      string
	Audience    string
	ExpiryHours int
}

// PasswordPolicy is the strength policy the credential store enforces on
// registration.
type PasswordPolicy struct {
	MinLength           int
	RequireDigit        bool
	RequireLowercase    bool
	RequireUppercase    bool
	RequireNonAlphanum  bool
	RequiredUniqueChars int
}

// DefaultPasswordPolicy mirrors the stock identity-framework defaults.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:           6,
		RequireDigit:        true,
		RequireLowercase:    true,
		RequireUppercase:    true,
		RequireNonAlphanum:  true,
		RequiredUniqueChars: 1,
	}
}
