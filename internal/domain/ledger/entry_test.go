package ledger

import (
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryType(t *testing.T) {
	t.Run("IsValid accepts known types", func(t *testing.T) {
		for _, et := range []EntryType{
			EntryTypeDebit, EntryTypeCredit, EntryTypeOrder,
			EntryTypePayment, EntryTypeAdjustment, EntryTypeOpeningBalance,
		} {
			assert.True(t, et.IsValid(), "expected %s to be valid", et)
		}
		assert.False(t, EntryType("refund").IsValid())
	})

	t.Run("Direction", func(t *testing.T) {
		assert.Equal(t, DirectionIncrease, EntryTypeDebit.Direction())
		assert.Equal(t, DirectionIncrease, EntryTypeOrder.Direction())
		assert.Equal(t, DirectionIncrease, EntryTypeAdjustment.Direction())
		assert.Equal(t, DirectionDecrease, EntryTypeCredit.Direction())
		assert.Equal(t, DirectionDecrease, EntryTypePayment.Direction())
		assert.Equal(t, DirectionReset, EntryTypeOpeningBalance.Direction())
	})

	t.Run("ParseEntryType normalizes case", func(t *testing.T) {
		et, err := ParseEntryType(" Credit ")
		require.NoError(t, err)
		assert.Equal(t, EntryTypeCredit, et)

		_, err = ParseEntryType("bogus")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestNewEntry(t *testing.T) {
	customerID := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid manual entry", func(t *testing.T) {
		e, err := NewEntry(customerID, date, " Opening stock ", EntryTypeDebit, decimal.NewFromInt(100), "R-1", NoSource(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "Opening stock", e.Description)
		assert.False(t, e.IsSystemGenerated())
		assert.NotEqual(t, uuid.Nil, e.ID)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewEntry(customerID, date, "x", EntryTypeDebit, decimal.NewFromInt(-1), "", NoSource(), uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("adjustment keeps its sign", func(t *testing.T) {
		e, err := NewEntry(customerID, date, "rate difference", EntryTypeAdjustment, decimal.NewFromInt(-25), "", NoSource(), uuid.Nil)
		require.NoError(t, err)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(-25)))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := NewEntry(uuid.Nil, date, "x", EntryTypeDebit, decimal.NewFromInt(1), "", NoSource(), uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewEntry(customerID, time.Time{}, "x", EntryTypeDebit, decimal.NewFromInt(1), "", NoSource(), uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewEntry(customerID, date, "   ", EntryTypeDebit, decimal.NewFromInt(1), "", NoSource(), uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewEntry(customerID, date, "x", EntryType("misc"), decimal.NewFromInt(1), "", NoSource(), uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects half-filled source", func(t *testing.T) {
		_, err := NewEntry(customerID, date, "x", EntryTypeOrder, decimal.NewFromInt(1), "", Source{Kind: SourceKindOrder}, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestEntry_Revise(t *testing.T) {
	newManual := func(t *testing.T) *Entry {
		e, err := NewEntry(uuid.New(), time.Now(), "credit note", EntryTypeCredit, decimal.NewFromInt(50), "CN-1", NoSource(), uuid.New())
		require.NoError(t, err)
		return e
	}

	t.Run("returns delta", func(t *testing.T) {
		e := newManual(t)
		amount := decimal.NewFromInt(80)
		delta, err := e.Revise(Revision{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, delta.Equal(decimal.NewFromInt(30)), "delta was %s", delta)
		assert.True(t, e.Amount.Equal(amount))
	})

	t.Run("invalid revision leaves entry untouched", func(t *testing.T) {
		e := newManual(t)
		amount := decimal.NewFromInt(90)
		blank := " "
		_, err := e.Revise(Revision{Amount: &amount, Description: &blank})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("system entries are immutable", func(t *testing.T) {
		e, err := NewEntry(uuid.New(), time.Now(), "order", EntryTypeOrder, decimal.NewFromInt(400), "SO-1", OrderSource(uuid.New()), uuid.Nil)
		require.NoError(t, err)
		amount := decimal.NewFromInt(1)
		_, err = e.Revise(Revision{Amount: &amount})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.ErrorIs(t, e.EnsureRemovable(), shared.ErrInvalidState)
	})
}

func TestParseSource(t *testing.T) {
	id := uuid.New()

	s, err := ParseSource("", nil)
	require.NoError(t, err)
	assert.True(t, s.IsNone())

	s, err = ParseSource("Collection", &id)
	require.NoError(t, err)
	assert.Equal(t, CollectionSource(id), s)

	_, err = ParseSource("Invoice", &id)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
