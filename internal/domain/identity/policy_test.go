package identity

import (
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	customerID := uuid.New()
	salesmanID := uuid.New()
	owner := Owner{CustomerID: customerID, SalesmanID: salesmanID}

	tests := []struct {
		name      string
		principal Principal
		allowed   bool
	}{
		{"admin", Principal{Role: RoleAdmin}, true},
		{"assigned salesman", Principal{Role: RoleSalesman, ProfileID: salesmanID}, true},
		{"other salesman", Principal{Role: RoleSalesman, ProfileID: uuid.New()}, false},
		{"owning customer", Principal{Role: RoleCustomer, ProfileID: customerID}, true},
		{"other customer", Principal{Role: RoleCustomer, ProfileID: uuid.New()}, false},
		{"customer using salesman id", Principal{Role: RoleCustomer, ProfileID: salesmanID}, false},
		{"unknown role", Principal{Role: Role("auditor"), ProfileID: customerID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, owner)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrForbidden)
			}
		})
	}

	t.Run("salesman without profile never matches unowned resource", func(t *testing.T) {
		err := Authorize(Principal{Role: RoleSalesman}, Owner{CustomerID: customerID})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(System()))
	assert.ErrorIs(t, RequireAdmin(Principal{Role: RoleSalesman}), shared.ErrForbidden)
	assert.NoError(t, RequireRole(Principal{Role: RoleSalesman}, RoleAdmin, RoleSalesman))
}

func TestScopeFor(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, Scope{}, ScopeFor(Principal{Role: RoleAdmin}))

	s := ScopeFor(Principal{Role: RoleSalesman, ProfileID: id})
	require.NotNil(t, s.SalesmanID)
	assert.Equal(t, id, *s.SalesmanID)
	assert.Nil(t, s.CustomerID)

	s = ScopeFor(Principal{Role: RoleCustomer, ProfileID: id})
	require.NotNil(t, s.CustomerID)
	assert.Equal(t, id, *s.CustomerID)
}

func TestNewPrincipal(t *testing.T) {
	_, err := NewPrincipal(uuid.New(), "ravi", RoleSalesman, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	p, err := NewPrincipal(uuid.New(), "admin", RoleAdmin, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	_, err = ParseRole("manager")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
