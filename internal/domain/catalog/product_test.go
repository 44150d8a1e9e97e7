package catalog

import (
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	companyID := uuid.New()

	t.Run("defaults unit and upper-cases sku", func(t *testing.T) {
		p, err := NewProduct(companyID, "bis-01", "Biscuits", "", decimal.NewFromInt(10), decimal.NewFromInt(18))
		require.NoError(t, err)
		assert.Equal(t, "BIS-01", p.SKU)
		assert.Equal(t, "pcs", p.Unit)
	})

	t.Run("rejects bad pricing", func(t *testing.T) {
		_, err := NewProduct(companyID, "A", "A", "box", decimal.NewFromInt(-1), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewProduct(companyID, "A", "A", "box", decimal.NewFromInt(1), decimal.NewFromInt(101))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("requires company", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, "A", "A", "box", decimal.NewFromInt(1), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestProduct_Reprice(t *testing.T) {
	p, err := NewProduct(uuid.New(), "A", "A", "box", decimal.NewFromInt(1), decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, p.Reprice(decimal.NewFromInt(12), decimal.NewFromInt(5)))
	assert.True(t, p.Rate.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 2, p.Version)
}

func TestNewCompany(t *testing.T) {
	c, err := NewCompany("Parle", "27aaacp1234a1z5")
	require.NoError(t, err)
	assert.Equal(t, "27AAACP1234A1Z5", c.GSTIN)

	_, err = NewCompany("Parle", "123")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
