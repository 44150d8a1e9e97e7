package collection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/dms/backend/internal/domain/ledger"
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

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	svc := NewService(
		testutil.NewUnitOfWork(t, db),
		persistence.NewGormCollectionRepository(db),
		persistence.NewGormCustomerRepository(db),
		nil,
		zaptest.NewLogger(t),
	)
	return svc, db
}

func createCash(t *testing.T, svc *Service, customerID uuid.UUID, amount int64) *CollectionResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), testutil.Admin(), CreateCollectionRequest{
		CustomerID:  customerID,
		Amount:      decimal.NewFromInt(amount),
		PaymentMode: "cash",
	})
	require.NoError(t, err)
	return resp
}

func setStatus(t *testing.T, svc *Service, id uuid.UUID, status string) *StatusChangeResponse {
	t.Helper()
	resp, err := svc.UpdateStatus(context.Background(), testutil.Admin(), id, UpdateStatusRequest{Status: status})
	require.NoError(t, err)
	return resp
}

func entriesOf(t *testing.T, db *gorm.DB, customerID uuid.UUID) []ledger.Entry {
	t.Helper()
	entries, err := persistence.NewGormLedgerEntryRepository(db).FindByCustomer(context.Background(), customerID, shared.DateRange{})
	require.NoError(t, err)
	return entries
}

func TestService_Create(t *testing.T) {
	svc, db := newTestService(t)
	salesman := testutil.SeedSalesman(t, db, "9800000001")
	customer := testutil.SeedCustomer(t, db, "9900000001", 0, salesman.ID)

	first := createCash(t, svc, customer.ID, 100)
	second := createCash(t, svc, customer.ID, 200)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("COL-%d-000001", year), first.CollectionNumber)
	assert.Equal(t, fmt.Sprintf("COL-%d-000002", year), second.CollectionNumber)
	assert.Equal(t, "pending", first.Status)
	require.NotNil(t, first.SalesmanID)
	assert.Equal(t, salesman.ID, *first.SalesmanID)
	assert.Empty(t, entriesOf(t, db, customer.ID))

	t.Run("cheque needs a number", func(t *testing.T) {
		_, err := svc.Create(context.Background(), testutil.Admin(), CreateCollectionRequest{
			CustomerID: customer.ID, Amount: decimal.NewFromInt(10), PaymentMode: "cheque",
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := svc.Create(context.Background(), testutil.Admin(), CreateCollectionRequest{
			CustomerID: customer.ID, Amount: decimal.Zero, PaymentMode: "cash",
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("salesman limited to assigned customers", func(t *testing.T) {
		other := testutil.SeedCustomer(t, db, "9900000002", 0, uuid.Nil)
		_, err := svc.Create(context.Background(), testutil.SalesmanPrincipal(salesman.ID), CreateCollectionRequest{
			CustomerID: other.ID, Amount: decimal.NewFromInt(10), PaymentMode: "cash",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)

		_, err = svc.Create(context.Background(), testutil.SalesmanPrincipal(salesman.ID), CreateCollectionRequest{
			CustomerID: customer.ID, Amount: decimal.NewFromInt(10), PaymentMode: "upi",
		})
		assert.NoError(t, err)
	})

	t.Run("customers cannot record collections", func(t *testing.T) {
		_, err := svc.Create(context.Background(), testutil.CustomerPrincipal(customer.ID), CreateCollectionRequest{
			CustomerID: customer.ID, Amount: decimal.NewFromInt(10), PaymentMode: "cash",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestService_ApproveBounceClear(t *testing.T) {
	svc, db := newTestService(t)
	customer := testutil.SeedCustomer(t, db, "9900000010", 400, uuid.Nil)
	c := createCash(t, svc, customer.ID, 400)

	approved := setStatus(t, svc, c.ID, "approved")
	assert.Equal(t, "payment", approved.EntryType)
	testutil.AssertAmount(t, 0, approved.Outstanding)
	testutil.AssertAmount(t, 0, testutil.Outstanding(t, db, customer.ID))

	bounced := setStatus(t, svc, c.ID, "bounced")
	assert.Equal(t, "debit", bounced.EntryType)
	testutil.AssertAmount(t, 400, testutil.Outstanding(t, db, customer.ID))

	cleared := setStatus(t, svc, c.ID, "cleared")
	assert.Equal(t, "credit", cleared.EntryType)
	testutil.AssertAmount(t, 0, testutil.Outstanding(t, db, customer.ID))

	entries := entriesOf(t, db, customer.ID)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, ledger.CollectionSource(c.ID), e.Source)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(400)))
	}
	assert.Equal(t, 4, cleared.Collection.Version)
}

func TestService_ApprovalFloorsAtZero(t *testing.T) {
	svc, db := newTestService(t)
	customer := testutil.SeedCustomer(t, db, "9900000011", 100, uuid.Nil)
	c := createCash(t, svc, customer.ID, 250)

	setStatus(t, svc, c.ID, "approved")
	testutil.AssertAmount(t, 0, testutil.Outstanding(t, db, customer.ID))
}

func TestService_PlainStatusWrites(t *testing.T) {
	svc, db := newTestService(t)
	customer := testutil.SeedCustomer(t, db, "9900000012", 300, uuid.Nil)

	failed := createCash(t, svc, customer.ID, 100)
	resp := setStatus(t, svc, failed.ID, "failed")
	assert.Nil(t, resp.EntryID)
	assert.Equal(t, "failed", resp.Collection.Status)

	cleared := createCash(t, svc, customer.ID, 100)
	resp = setStatus(t, svc, cleared.ID, "cleared")
	assert.Nil(t, resp.EntryID)

	assert.Empty(t, entriesOf(t, db, customer.ID))
	testutil.AssertAmount(t, 300, testutil.Outstanding(t, db, customer.ID))
}

func TestService_UpdateStatusRejections(t *testing.T) {
	svc, db := newTestService(t)
	customer := testutil.SeedCustomer(t, db, "9900000013", 0, uuid.Nil)
	c := createCash(t, svc, customer.ID, 100)

	_, err := svc.UpdateStatus(context.Background(), testutil.Admin(), c.ID, UpdateStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), testutil.SalesmanPrincipal(uuid.New()), c.ID, UpdateStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	stale := 7
	_, err = svc.UpdateStatus(context.Background(), testutil.Admin(), c.ID, UpdateStatusRequest{Status: "approved", Version: &stale})
	assert.ErrorIs(t, err, shared.ErrVersionMismatch)

	_, err = svc.UpdateStatus(context.Background(), testutil.Admin(), uuid.New(), UpdateStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Empty(t, entriesOf(t, db, customer.ID))
}

func TestService_UpdateStatusToCancelledIsFieldWrite(t *testing.T) {
	svc, db := newTestService(t)
	customer := testutil.SeedCustomer(t, db, "9900000015", 250, uuid.Nil)

	pending := createCash(t, svc, customer.ID, 100)
	resp := setStatus(t, svc, pending.ID, "cancelled")
	assert.Nil(t, resp.EntryID)
	assert.Equal(t, "cancelled", resp.Collection.Status)

	failed := createCash(t, svc, customer.ID, 60)
	setStatus(t, svc, failed.ID, "failed")
	resp = setStatus(t, svc, failed.ID, "cancelled")
	assert.Nil(t, resp.EntryID)

	resp = setStatus(t, svc, pending.ID, "pending")
	assert.Nil(t, resp.EntryID)
	assert.Equal(t, "pending", resp.Collection.Status)

	assert.Empty(t, entriesOf(t, db, customer.ID))
	testutil.AssertAmount(t, 250, testutil.Outstanding(t, db, customer.ID))
}

func TestService_Cancel(t *testing.T) {
	svc, db := newTestService(t)
	customer := testutil.SeedCustomer(t, db, "9900000014", 500, uuid.Nil)

	t.Run("pending collection posts a reversal without moving outstanding", func(t *testing.T) {
		c := createCash(t, svc, customer.ID, 120)
		resp, err := svc.Cancel(context.Background(), testutil.Admin(), c.ID)
		require.NoError(t, err)

		assert.Equal(t, "cancelled", resp.Collection.Status)
		assert.Equal(t, "debit", resp.EntryType)
		testutil.AssertAmount(t, 500, testutil.Outstanding(t, db, customer.ID))

		entries := entriesOf(t, db, customer.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.EntryTypeDebit, entries[0].Type)
		assert.Equal(t, ledger.CollectionSource(c.ID), entries[0].Source)

		resp = setStatus(t, svc, c.ID, "pending")
		assert.Nil(t, resp.EntryID)
		assert.Len(t, entriesOf(t, db, customer.ID), 1)
	})

	t.Run("non pending collection is rejected", func(t *testing.T) {
		c := createCash(t, svc, customer.ID, 100)
		setStatus(t, svc, c.ID, "approved")
		before := testutil.Outstanding(t, db, customer.ID)

		_, err := svc.Cancel(context.Background(), testutil.Admin(), c.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.True(t, before.Equal(testutil.Outstanding(t, db, customer.ID)))

		stored, err := persistence.NewGormCollectionRepository(db).FindByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, collection.StatusApproved, stored.Status)
	})
}

func TestService_ListAndGetScope(t *testing.T) {
	svc, db := newTestService(t)
	salesman := testutil.SeedSalesman(t, db, "9800000002")
	mine := testutil.SeedCustomer(t, db, "9900000020", 0, salesman.ID)
	other := testutil.SeedCustomer(t, db, "9900000021", 0, uuid.Nil)

	mineCollection := createCash(t, svc, mine.ID, 10)
	otherCollection := createCash(t, svc, other.ID, 20)

	rows, total, err := svc.List(context.Background(), testutil.SalesmanPrincipal(salesman.ID), CollectionListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, mineCollection.ID, rows[0].ID)

	_, total, err = svc.List(context.Background(), testutil.Admin(), CollectionListFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = svc.GetByID(context.Background(), testutil.CustomerPrincipal(mine.ID), otherCollection.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	got, err := svc.GetByID(context.Background(), testutil.CustomerPrincipal(other.ID), otherCollection.ID)
	require.NoError(t, err)
	assert.Equal(t, otherCollection.CollectionNumber, got.CollectionNumber)
}
