// Package testutil provides common test utilities for the DMS backend.
// It sets up in-memory databases and units of work, seeds records and
// builds principals for service and handler tests.
package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/persistence"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres flavoured GORM connection backed by sqlmock.
// The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens a private in-memory SQLite database with the schema applied.
// A single connection keeps every query on the same database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
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

// NewUnitOfWork returns a unit of work over db guarded by an in-process
// locker, with short retry intervals.
func NewUnitOfWork(t *testing.T, db *gorm.DB) *persistence.GormUnitOfWork {
	t.Helper()
	return persistence.NewGormUnitOfWork(db, cache.NewMemoryLocker(), persistence.UnitOfWorkConfig{
		Timeout:         5 * time.Second,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}, zap.NewNop())
}

// SeedCustomer stores a customer with the given outstanding amount.
func SeedCustomer(t *testing.T, db *gorm.DB, mobile string, outstanding int64, salesmanID uuid.UUID) *partner.Customer {
	t.Helper()

	c, err := partner.NewCustomer("Customer "+mobile, mobile, decimal.NewFromInt(1000))
	require.NoError(t, err)
	c.SetOutstanding(decimal.NewFromInt(outstanding))
	c.AssignSalesman(salesmanID)
	require.NoError(t, persistence.NewGormCustomerRepository(db).Create(context.Background(), c))
	return c
}

// SeedSalesman stores an active salesman.
func SeedSalesman(t *testing.T, db *gorm.DB, mobile string) *partner.Salesman {
	t.Helper()

	s, err := partner.NewSalesman("Salesman "+mobile, mobile, "North")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSalesmanRepository(db).Create(context.Background(), s))
	return s
}

// Outstanding reads the cached outstanding amount straight from the store.
func Outstanding(t *testing.T, db *gorm.DB, customerID uuid.UUID) decimal.Decimal {
	t.Helper()

	c, err := persistence.NewGormCustomerRepository(db).FindByID(context.Background(), customerID)
	require.NoError(t, err)
	return c.OutstandingAmount
}

// AssertAmount compares a decimal with a whole number regardless of scale.
func AssertAmount(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !actual.Equal(decimal.NewFromInt(expected)) {
		require.Failf(t, "amount mismatch", "expected %d, got %s %v", expected, actual.String(), msgAndArgs)
	}
}

// Admin returns an admin principal.
func Admin() identity.Principal {
	return identity.Principal{UserID: NewTestUUID("admin"), Username: "admin", Role: identity.RoleAdmin}
}

// SalesmanPrincipal returns a principal acting as the given salesman.
func SalesmanPrincipal(salesmanID uuid.UUID) identity.Principal {
	return identity.Principal{UserID: uuid.New(), Username: "salesman", Role: identity.RoleSalesman, ProfileID: salesmanID}
}

// CustomerPrincipal returns a principal acting as the given customer.
func CustomerPrincipal(customerID uuid.UUID) identity.Principal {
	return identity.Principal{UserID: uuid.New(), Username: "customer", Role: identity.RoleCustomer, ProfileID: customerID}
}

// TestContext wraps a Gin test context with HTTP recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a new Gin test context.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	return &TestContext{
		Context:  c,
		Recorder: w,
		Engine:   engine,
	}
}

// ResponseBody returns the response body as bytes.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the HTTP status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID generates a deterministic UUID for testing.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// RequireEventually retries condition until it passes or fails the test.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
