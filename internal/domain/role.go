package domain

import "fmt"

// Role is the closed set of account kinds.
type Role string

const (
	RoleAdmin  Role = "AdminUser"
	RoleSeller Role = "Seller"
	RoleBuyer  Role = "Buyer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ParseRoles parses every entry, failing on the first unknown one.
func ParseRoles(ss []string) ([]Role, error) {
	out := make([]Role, 0, len(ss))
	for _, s := range ss {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
