package access

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

func (r Role) IsValid() bool {
	switch r {
	case RoleAnonymous, RoleCustomer, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole converts a role claim coming from the identity provider.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
