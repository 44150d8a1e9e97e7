package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	m := NewMockDB(t)
	assert.NotNil(t, m.DB)
	m.ExpectationsWereMet(t)
}

func TestNewSQLiteDB_SeedsAndReads(t *testing.T) {
	db := NewSQLiteDB(t)
	salesman := SeedSalesman(t, db, "9800000001")
	customer := SeedCustomer(t, db, "9900000001", 250, salesman.ID)

	AssertAmount(t, 250, Outstanding(t, db, customer.ID))
}

func TestNewUnitOfWork_Commits(t *testing.T) {
	db := NewSQLiteDB(t)
	customer := SeedCustomer(t, db, "9900000002", 0, uuid.Nil)

	unit := NewUnitOfWork(t, db)
	err := unit.Do(context.Background(), nil, func(ctx context.Context, repos uow.Repositories) error {
		c, err := repos.Customers.FindByIDForUpdate(ctx, customer.ID)
		if err != nil {
			return err
		}
		return repos.Customers.UpdateOutstanding(ctx, c.ID, c.OutstandingAmount.Add(decimal.NewFromInt(10)))
	})
	require.NoError(t, err)
	AssertAmount(t, 10, Outstanding(t, db, customer.ID))
}

func TestPrincipals(t *testing.T) {
	assert.Equal(t, identity.RoleAdmin, Admin().Role)
	id := uuid.New()
	assert.Equal(t, id, SalesmanPrincipal(id).ProfileID)
	assert.Equal(t, identity.RoleCustomer, CustomerPrincipal(id).Role)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestDo_DecodesEnvelope(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body})
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "NOT_FOUND", "message": "missing"}})
	})

	w := Do(t, engine, http.MethodPost, "/echo", map[string]string{"name": "ok"}, nil)
	data := DecodeData[map[string]string](t, w)
	assert.Equal(t, "ok", data["name"])

	w = Do(t, engine, http.MethodGet, "/fail", nil, Bearer("token"))
	AssertErrorResponse(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestRequireEventually(t *testing.T) {
	start := time.Now()
	RequireEventually(t, func() bool { return time.Since(start) > 5*time.Millisecond }, time.Second, time.Millisecond)
}
