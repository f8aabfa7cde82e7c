package enums

import (
	"fmt"
	"strings"
)

// RoleName enumerates the assignable user roles.
type RoleName string

const (
	RoleAdmin RoleName = "ADMIN"
	RoleUser  RoleName = "USER"
)

var validRoleNames = []RoleName{RoleAdmin, RoleUser}

// String implements fmt.Stringer.
func (r RoleName) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RoleName.
func (r RoleName) IsValid() bool {
	for _, candidate := range validRoleNames {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRoleName converts raw input into a RoleName.
func ParseRoleName(value string) (RoleName, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validRoleNames {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role name %q", value)
}
