package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, mobile string, outstanding int64) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer("Customer "+mobile, mobile, decimal.NewFromInt(10000))
	require.NoError(t, err)
	c.SetOutstanding(decimal.NewFromInt(outstanding))
	require.NoError(t, NewGormCustomerRepository(db).Create(context.Background(), c))
	return c
}

func newManualEntry(t *testing.T, customerID uuid.UUID, day int, typ ledger.EntryType, amount int64) *ledger.Entry {
	t.Helper()
	e, err := ledger.NewEntry(customerID, time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		"manual "+string(typ), typ, decimal.NewFromInt(amount), "", ledger.NoSource(), uuid.Nil)
	require.NoError(t, err)
	return e
}
