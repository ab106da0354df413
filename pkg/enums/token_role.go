package enums

import "fmt"

// TokenRole is the Postgres role the hosted auth provider stamps on access tokens.
type TokenRole string

const (
	TokenRoleAnon          TokenRole = "anon"
	TokenRoleAuthenticated TokenRole = "authenticated"
	TokenRoleServiceRole   TokenRole = "service_role"
)

var validTokenRoles = []TokenRole{
	TokenRoleAnon,
	TokenRoleAuthenticated,
	TokenRoleServiceRole,
}

func (r TokenRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known TokenRole.
func (r TokenRole) IsValid() bool {
	for _, candidate := range validTokenRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseTokenRole converts raw input into a TokenRole.
func ParseTokenRole(value string) (TokenRole, error) {
	for _, candidate := range validTokenRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid token role %q", value)
}
