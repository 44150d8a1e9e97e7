package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T, number string, customerID uuid.UUID) *collection.Collection {
	t.Helper()
	c, err := collection.NewCollection(number, customerID, nil, decimal.NewFromInt(250),
		collection.PaymentModeCheque, collection.PaymentDetails{ChequeNumber: "001122", BankName: "SBI"},
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), uuid.Nil)
	require.NoError(t, err)
	return c
}

func TestGormCollectionRepository_SaveWithLock(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCollectionRepository(db)
	ctx := context.Background()
	customer := seedCustomer(t, db, "9200000001", 0)

	c := newTestCollection(t, collection.FormatNumber(2026, 1), customer.ID)
	require.NoError(t, repo.Create(ctx, c))

	_, _, err := c.ChangeStatus(collection.StatusApproved)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, collection.StatusApproved, found.Status)
	assert.Equal(t, "001122", found.Details.ChequeNumber)
	assert.Equal(t, 2, found.Version)

	// A second writer holding the old version loses.
	stale := newTestCollection(t, c.CollectionNumber, customer.ID)
	stale.ID = c.ID
	_, _, err = stale.ChangeStatus(collection.StatusFailed)
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, stale)
	assert.Equal(t, shared.CodeVersionMismatch, shared.CodeOf(err))

	missing := newTestCollection(t, "COL-X", customer.ID)
	_, _, err = missing.ChangeStatus(collection.StatusFailed)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.SaveWithLock(ctx, missing), shared.ErrNotFound)
}

func TestGormCollectionRepository_FindAllAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCollectionRepository(db)
	ctx := context.Background()
	a := seedCustomer(t, db, "9200000002", 0)
	b := seedCustomer(t, db, "9200000003", 0)

	require.NoError(t, repo.Create(ctx, newTestCollection(t, collection.FormatNumber(2026, 1), a.ID)))
	require.NoError(t, repo.Create(ctx, newTestCollection(t, collection.FormatNumber(2026, 2), a.ID)))
	require.NoError(t, repo.Create(ctx, newTestCollection(t, collection.FormatNumber(2025, 1), b.ID)))

	list, total, err := repo.FindAll(ctx, collection.Filter{Filter: shared.DefaultFilter(), CustomerID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	count, err := repo.CountByNumberPrefix(ctx, collection.NumberPrefix(2026))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	err = repo.Create(ctx, newTestCollection(t, collection.FormatNumber(2026, 1), b.ID))
	assert.Equal(t, shared.CodeConflict, shared.CodeOf(err))
}
