package catalog

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
)

// Company is a manufacturer whose products the distributor carries
type Company struct {
	shared.BaseAggregateRoot
	Name     string
	GSTIN    string
	IsActive bool
}

// NewCompany creates an active company
func NewCompany(name, gstin string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("company name is required")
	}
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if gstin != "" && len(gstin) != 15 {
		return nil, shared.NewValidationError("GSTIN must be 15 characters")
	}
	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		GSTIN:             gstin,
		IsActive:          true,
	}, nil
}
