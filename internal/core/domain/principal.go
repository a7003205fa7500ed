package domain

import "slices"

// Principal is the identity established for a request from a validated
// bearer token. A nil *Principal means the caller is anonymous.
type Principal struct {
	Name  string
	Roles []string
}

// Authenticated reports whether p carries an identity.
func Authenticated(p *Principal) bool {
	return p != nil && p.Name != ""
}

// HasRole reports whether p holds role. Role names compare exactly.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}

// HasAnyRole reports whether p holds at least one of roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// CanModifyProducts reports whether p may create or update products. Any
// authenticated caller may.
func CanModifyProducts(p *Principal) bool {
	return Authenticated(p)
}

// CanDeleteProducts reports whether p may delete products, which requires
// the Admin role.
func CanDeleteProducts(p *Principal) bool {
	return Authenticated(p) && p.HasRole(RoleAdmin)
}
