package partner

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence"
	"github.com/dms/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newServices(t *testing.T) (*CustomerService, *SalesmanService, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	customers := NewCustomerService(
		testutil.NewUnitOfWork(t, db),
		persistence.NewGormCustomerRepository(db),
		persistence.NewGormSalesmanRepository(db),
		zaptest.NewLogger(t),
	)
	salesmen := NewSalesmanService(persistence.NewGormSalesmanRepository(db), zaptest.NewLogger(t))
	return customers, salesmen, db
}

func TestCustomerService_Create(t *testing.T) {
	svc, _, db := newServices(t)
	salesman := testutil.SeedSalesman(t, db, "9800000201")

	resp, err := svc.Create(context.Background(), testutil.Admin(), CreateCustomerRequest{
		Name:        "  Sharma Stores ",
		Mobile:      "9900000201",
		Territory:   "North",
		GSTIN:       "27aapfu0939f1zv",
		CreditLimit: decimal.NewFromInt(5000),
		SalesmanID:  &salesman.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sharma Stores", resp.Name)
	assert.Equal(t, "27AAPFU0939F1ZV", resp.GSTIN)
	testutil.AssertAmount(t, 0, resp.OutstandingAmount)
	testutil.AssertAmount(t, 5000, resp.AvailableCredit)
	require.NotNil(t, resp.SalesmanID)
	assert.Equal(t, salesman.ID, *resp.SalesmanID)

	t.Run("duplicate mobile", func(t *testing.T) {
		_, err := svc.Create(context.Background(), testutil.Admin(), CreateCustomerRequest{Name: "Other", Mobile: "9900000201"})
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("unknown salesman", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.Create(context.Background(), testutil.Admin(), CreateCustomerRequest{Name: "Other", Mobile: "9900000202", SalesmanID: &missing})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid mobile", func(t *testing.T) {
		_, err := svc.Create(context.Background(), testutil.Admin(), CreateCustomerRequest{Name: "Other", Mobile: "abc"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("admin only", func(t *testing.T) {
		_, err := svc.Create(context.Background(), testutil.SalesmanPrincipal(salesman.ID), CreateCustomerRequest{Name: "Other", Mobile: "9900000203"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestCustomerService_UpdateKeepsOutstanding(t *testing.T) {
	svc, _, db := newServices(t)
	customer := testutil.SeedCustomer(t, db, "9900000210", 350, uuid.Nil)

	limit := decimal.NewFromInt(2000)
	territory := "South"
	inactive := false
	resp, err := svc.Update(context.Background(), testutil.Admin(), customer.ID, UpdateCustomerRequest{
		CreditLimit: &limit,
		Territory:   &territory,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	testutil.AssertAmount(t, 2000, resp.CreditLimit)
	assert.Equal(t, "South", resp.Territory)
	assert.False(t, resp.IsActive)
	testutil.AssertAmount(t, 350, testutil.Outstanding(t, db, customer.ID))

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(context.Background(), testutil.Admin(), customer.ID, UpdateCustomerRequest{CreditLimit: &negative})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(context.Background(), testutil.Admin(), uuid.New(), UpdateCustomerRequest{Territory: &territory})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerService_AssignSalesmanAndScope(t *testing.T) {
	svc, _, db := newServices(t)
	salesman := testutil.SeedSalesman(t, db, "9800000220")
	customer := testutil.SeedCustomer(t, db, "9900000220", 0, uuid.Nil)
	testutil.SeedCustomer(t, db, "9900000221", 0, uuid.Nil)

	_, err := svc.GetByID(context.Background(), testutil.SalesmanPrincipal(salesman.ID), customer.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	resp, err := svc.AssignSalesman(context.Background(), testutil.Admin(), customer.ID, AssignSalesmanRequest{SalesmanID: &salesman.ID})
	require.NoError(t, err)
	require.NotNil(t, resp.SalesmanID)

	got, err := svc.GetByID(context.Background(), testutil.SalesmanPrincipal(salesman.ID), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)

	rows, total, err := svc.List(context.Background(), testutil.SalesmanPrincipal(salesman.ID), CustomerListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)

	_, total, err = svc.List(context.Background(), testutil.Admin(), CustomerListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = svc.List(context.Background(), testutil.CustomerPrincipal(customer.ID), CustomerListFilter{})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	self, err := svc.GetByID(context.Background(), testutil.CustomerPrincipal(customer.ID), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Mobile, self.Mobile)

	cleared, err := svc.AssignSalesman(context.Background(), testutil.Admin(), customer.ID, AssignSalesmanRequest{})
	require.NoError(t, err)
	assert.Nil(t, cleared.SalesmanID)
}

func TestSalesmanService(t *testing.T) {
	_, svc, _ := newServices(t)

	created, err := svc.Create(context.Background(), testutil.Admin(), CreateSalesmanRequest{Name: "Ravi", Mobile: "9800000230", Territory: "East"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = svc.Create(context.Background(), testutil.Admin(), CreateSalesmanRequest{Name: "Ravi 2", Mobile: "9800000230"})
	assert.ErrorIs(t, err, shared.ErrConflict)

	rows, total, err := svc.List(context.Background(), testutil.Admin(), SalesmanListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Ravi", rows[0].Name)

	own, err := svc.GetByID(context.Background(), testutil.SalesmanPrincipal(created.ID), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "East", own.Territory)

	_, err = svc.GetByID(context.Background(), testutil.SalesmanPrincipal(uuid.New()), created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, _, err = svc.List(context.Background(), testutil.SalesmanPrincipal(created.ID), SalesmanListFilter{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
