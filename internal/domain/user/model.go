package user

import "slices"

const RoleAdmin = "admin"

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	UserID string
	Email  string
	Phone  string
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
