package catalog

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with a list rate and GST percentage
type Product struct {
	shared.BaseAggregateRoot
	CompanyID uuid.UUID
	SKU       string
	Name      string
	Unit      string
	Rate      decimal.Decimal
	GSTRate   decimal.Decimal // percentage, e.g. 18
	IsActive  bool
}

var maxGSTRate = decimal.NewFromInt(100)

// NewProduct creates an active product
func NewProduct(companyID uuid.UUID, sku, name, unit string, rate, gstRate decimal.Decimal) (*Product, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("company id is required")
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewValidationError("sku is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("product name is required")
	}
	if err := validatePricing(rate, gstRate); err != nil {
		return nil, err
	}
	if unit = strings.TrimSpace(unit); unit == "" {
		unit = "pcs"
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		SKU:               sku,
		Name:              name,
		Unit:              unit,
		Rate:              rate,
		GSTRate:           gstRate,
		IsActive:          true,
	}, nil
}

// Reprice changes the list rate and GST percentage
func (p *Product) Reprice(rate, gstRate decimal.Decimal) error {
	if err := validatePricing(rate, gstRate); err != nil {
		return err
	}
	p.Rate = rate
	p.GSTRate = gstRate
	p.Touch()
	p.IncrementVersion()
	return nil
}

func validatePricing(rate, gstRate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewValidationError("rate cannot be negative")
	}
	if gstRate.IsNegative() || gstRate.GreaterThan(maxGSTRate) {
		return shared.NewValidationError("GST rate must be between 0 and 100")
	}
	return nil
}
