package identity

import (
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Owner identifies who a resource belongs to. Either id may be uuid.Nil.
type Owner struct {
	CustomerID uuid.UUID
	SalesmanID uuid.UUID
}

var errAccessDenied = shared.NewDomainError(shared.CodeForbidden, "access to this resource is denied")

// Authorize is the single access rule for every ledger, order and
// collection operation: admins see everything, salesmen see resources
// assigned to them, customers see their own.
func Authorize(p Principal, owner Owner) error {
	switch p.Role {
	case RoleAdmin:
		return nil
	case RoleSalesman:
		if p.ProfileID != uuid.Nil && owner.SalesmanID == p.ProfileID {
			return nil
		}
	case RoleCustomer:
		if p.ProfileID != uuid.Nil && owner.CustomerID == p.ProfileID {
			return nil
		}
	}
	return errAccessDenied
}

// RequireAdmin rejects everyone but admins
func RequireAdmin(p Principal) error {
	if p.Role != RoleAdmin {
		return errAccessDenied
	}
	return nil
}

// RequireRole rejects principals whose role is not in roles
func RequireRole(p Principal, roles ...Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return errAccessDenied
}

// Scope is the listing restriction implied by a principal.
// Nil fields mean unrestricted.
type Scope struct {
	CustomerID *uuid.UUID
	SalesmanID *uuid.UUID
}

// ScopeFor returns the listing restriction for p
func ScopeFor(p Principal) Scope {
	id := p.ProfileID
	switch p.Role {
	case RoleSalesman:
		return Scope{SalesmanID: &id}
	case RoleCustomer:
		return Scope{CustomerID: &id}
	default:
		return Scope{}
	}
}
