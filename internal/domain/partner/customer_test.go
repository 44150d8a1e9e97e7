package partner

import (
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := NewCustomer("  Sharma Stores ", "+919876543210", decimal.NewFromInt(1000))
		require.NoError(t, err)
		assert.Equal(t, "Sharma Stores", c.Name)
		assert.True(t, c.OutstandingAmount.IsZero())
		assert.True(t, c.IsActive)
		assert.Equal(t, 1, c.Version)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewCustomer("", "9876543210", decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewCustomer("A", "12ab", decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewCustomer("A", "9876543210", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestCustomer_Outstanding(t *testing.T) {
	c, err := NewCustomer("Sharma Stores", "9876543210", decimal.NewFromInt(1000))
	require.NoError(t, err)

	require.NoError(t, c.IncreaseOutstanding(decimal.NewFromInt(400)))
	assert.True(t, c.OutstandingAmount.Equal(decimal.NewFromInt(400)))

	require.NoError(t, c.DecreaseOutstanding(decimal.NewFromInt(500)))
	assert.True(t, c.OutstandingAmount.IsZero(), "outstanding must floor at zero")

	assert.ErrorIs(t, c.IncreaseOutstanding(decimal.NewFromInt(-5)), shared.ErrValidation)

	c.SetOutstanding(decimal.NewFromInt(-10))
	assert.True(t, c.OutstandingAmount.IsZero())
}

func TestCustomer_CreditLimit(t *testing.T) {
	c, err := NewCustomer("Sharma Stores", "9876543210", decimal.NewFromInt(1000))
	require.NoError(t, err)
	c.SetOutstanding(decimal.NewFromInt(700))

	assert.True(t, c.AvailableCredit().Equal(decimal.NewFromInt(300)))
	assert.False(t, c.ExceedsCreditLimit(decimal.NewFromInt(300)))
	assert.True(t, c.ExceedsCreditLimit(decimal.NewFromInt(301)))

	require.NoError(t, c.SetCreditLimit(decimal.Zero))
	assert.False(t, c.ExceedsCreditLimit(decimal.NewFromInt(1_000_000)))
}

func TestCustomer_AssignSalesman(t *testing.T) {
	c, err := NewCustomer("Sharma Stores", "9876543210", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, c.OwnerSalesmanID())

	id := uuid.New()
	c.AssignSalesman(id)
	assert.Equal(t, id, c.OwnerSalesmanID())

	c.AssignSalesman(uuid.Nil)
	assert.Nil(t, c.SalesmanID)
}

func TestNewSalesman(t *testing.T) {
	s, err := NewSalesman("Ravi", "9123456780", "North")
	require.NoError(t, err)
	assert.Equal(t, "North", s.Territory)

	_, err = NewSalesman(" ", "9123456780", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
