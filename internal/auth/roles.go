package auth

import (
	"fmt"
	"strings"
)

// Role is an access level.
type Role string

const (
	RoleOperator      Role = "operator"
	RoleProgrammer    Role = "programmer"
	RoleAdministrator Role = "administrator"
)

var roleLevels = map[Role]int{
	RoleOperator:      1,
	RoleProgrammer:    2,
	RoleAdministrator: 3,
}

// Valid reports whether r is a known access level.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Allows reports whether r meets the required level. Unknown roles allow
// nothing.
func (r Role) Allows(required Role) bool {
	have, ok := roleLevels[r]
	if !ok {
		return false
	}
	return have >= roleLevels[required]
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}
