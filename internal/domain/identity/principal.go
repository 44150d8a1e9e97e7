package identity

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is the coarse permission level of an authenticated user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSalesman Role = "salesman"
	RoleCustomer Role = "customer"
)

// IsValid returns true if r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSalesman, RoleCustomer:
		return true
	}
	return false
}

// ParseRole validates s against the known roles
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewValidationError("invalid role: " + s)
	}
	return r, nil
}

// Principal is the authenticated caller. ProfileID is the salesman or
// customer record the user acts as; it is uuid.Nil for admins.
type Principal struct {
	UserID    uuid.UUID
	Username  string
	Role      Role
	ProfileID uuid.UUID
}

// NewPrincipal validates that non-admin roles carry a profile
func NewPrincipal(userID uuid.UUID, username string, role Role, profileID uuid.UUID) (Principal, error) {
	if !role.IsValid() {
		return Principal{}, shared.NewDomainError(shared.CodeForbidden, "unknown role")
	}
	if role != RoleAdmin && profileID == uuid.Nil {
		return Principal{}, shared.NewDomainError(shared.CodeForbidden, string(role)+" principal has no profile")
	}
	return Principal{UserID: userID, Username: username, Role: role, ProfileID: profileID}, nil
}

// System is the principal used by internal jobs
func System() Principal {
	return Principal{Username: "system", Role: RoleAdmin}
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
