package partner

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Salesman is a field representative who books orders and collects payments
type Salesman struct {
	shared.BaseAggregateRoot
	UserID    *uuid.UUID // login account, if any
	Name      string
	Mobile    string
	Territory string
	IsActive  bool
}

// NewSalesman creates an active salesman
func NewSalesman(name, mobile, territory string) (*Salesman, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("salesman name is required")
	}
	if err := validateMobile(mobile); err != nil {
		return nil, err
	}
	return &Salesman{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Mobile:            strings.TrimSpace(mobile),
		Territory:         strings.TrimSpace(territory),
		IsActive:          true,
	}, nil
}

// LinkUser binds the salesman to a login account
func (s *Salesman) LinkUser(userID uuid.UUID) {
	s.UserID = &userID
	s.Touch()
}
