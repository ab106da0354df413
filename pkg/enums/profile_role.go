package enums

import "fmt"

// ProfileRole maps to profiles.role.
type ProfileRole string

const (
	ProfileRoleStudent   ProfileRole = "student"
	ProfileRoleModerator ProfileRole = "moderator"
	ProfileRoleAdmin     ProfileRole = "admin"
)

var validProfileRoles = []ProfileRole{
	ProfileRoleStudent,
	ProfileRoleModerator,
	ProfileRoleAdmin,
}

func (r ProfileRole) IsValid() bool {
	for _, candidate := range validProfileRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseProfileRole(value string) (ProfileRole, error) {
	for _, candidate := range validProfileRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid profile role %q", value)
}
