package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got)
}

func entryAt(day int, t EntryType, amount int64) Entry {
	date := time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
	return Entry{
		CustomerID: uuid.Nil,
		EntryDate:  date,
		Type:       t,
		Amount:     decimal.NewFromInt(amount),
	}
}

func TestFold(t *testing.T) {
	t.Run("applies each type", func(t *testing.T) {
		entries := []Entry{
			entryAt(1, EntryTypeDebit, 100),
			entryAt(2, EntryTypeOrder, 400),
			entryAt(3, EntryTypeCredit, 50),
			entryAt(4, EntryTypePayment, 200),
			entryAt(5, EntryTypeAdjustment, 10),
		}
		assertDecimal(t, 260, Fold(entries))
	})

	t.Run("opening balance resets", func(t *testing.T) {
		entries := []Entry{
			entryAt(1, EntryTypeDebit, 100),
			entryAt(2, EntryTypeOpeningBalance, 1000),
			entryAt(3, EntryTypeCredit, 300),
		}
		assertDecimal(t, 700, Fold(entries))
	})

	t.Run("order sensitive around opening balance", func(t *testing.T) {
		entries := []Entry{
			entryAt(1, EntryTypeOpeningBalance, 1000),
			entryAt(2, EntryTypeDebit, 100),
		}
		reordered := []Entry{entries[1], entries[0]}
		assertDecimal(t, 1100, Fold(entries))
		assertDecimal(t, 1000, Fold(reordered))
	})

	t.Run("adjustment keeps stored sign", func(t *testing.T) {
		entries := []Entry{
			entryAt(1, EntryTypeDebit, 100),
			{EntryDate: time.Now(), Type: EntryTypeAdjustment, Amount: decimal.NewFromInt(-30)},
		}
		assertDecimal(t, 70, Fold(entries))
	})

	t.Run("empty is zero", func(t *testing.T) {
		assertDecimal(t, 0, Fold(nil))
	})
}

func TestSortChronological(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := entryAt(2, EntryTypeDebit, 1)
	a.CreatedAt = base.Add(time.Hour)
	b := entryAt(2, EntryTypeDebit, 2)
	b.CreatedAt = base
	c := entryAt(1, EntryTypeDebit, 3)
	c.CreatedAt = base.Add(2 * time.Hour)

	entries := []Entry{a, b, c}
	SortChronological(entries)

	require.Len(t, entries, 3)
	assertDecimal(t, 3, entries[0].Amount)
	assertDecimal(t, 2, entries[1].Amount)
	assertDecimal(t, 1, entries[2].Amount)
}

func TestBalanceAt(t *testing.T) {
	entries := []Entry{
		entryAt(10, EntryTypePayment, 100),
		entryAt(1, EntryTypeOrder, 400),
		entryAt(20, EntryTypeDebit, 50),
	}

	assertDecimal(t, 350, BalanceAt(entries, time.Time{}))
	assertDecimal(t, 300, BalanceAt(entries, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assertDecimal(t, 0, BalanceAt(entries, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
	// input order is preserved
	assertDecimal(t, 100, entries[0].Amount)
}

func TestStatement(t *testing.T) {
	entries := []Entry{
		entryAt(3, EntryTypePayment, 150),
		entryAt(1, EntryTypeOrder, 400),
		entryAt(2, EntryTypeDebit, 100),
	}

	lines := Statement(entries, decimal.NewFromInt(25))
	require.Len(t, lines, 3)

	// newest first, balances computed oldest first
	assert.Equal(t, EntryTypePayment, lines[0].Entry.Type)
	assertDecimal(t, 375, lines[0].RunningBalance)
	assertDecimal(t, 150, lines[0].Credit)
	assertDecimal(t, 0, lines[0].Debit)

	assert.Equal(t, EntryTypeDebit, lines[1].Entry.Type)
	assertDecimal(t, 525, lines[1].RunningBalance)

	assert.Equal(t, EntryTypeOrder, lines[2].Entry.Type)
	assertDecimal(t, 425, lines[2].RunningBalance)
	assertDecimal(t, 400, lines[2].Debit)
}

func TestStatement_NegativeAdjustmentIsCredit(t *testing.T) {
	lines := Statement([]Entry{
		entryAt(1, EntryTypeDebit, 100),
		entryAt(2, EntryTypeAdjustment, -30),
	}, decimal.Zero)
	require.Len(t, lines, 2)
	assertDecimal(t, 30, lines[0].Credit)
	assertDecimal(t, 0, lines[0].Debit)
	assertDecimal(t, 70, lines[0].RunningBalance)
}

func TestOutstandingHelpers(t *testing.T) {
	t.Run("ApplyToOutstanding floors at zero", func(t *testing.T) {
		assertDecimal(t, 0, ApplyToOutstanding(decimal.NewFromInt(30), EntryTypeCredit, decimal.NewFromInt(50)))
		assertDecimal(t, 80, ApplyToOutstanding(decimal.NewFromInt(30), EntryTypeAdjustment, decimal.NewFromInt(50)))
		assertDecimal(t, 500, ApplyToOutstanding(decimal.NewFromInt(30), EntryTypeOpeningBalance, decimal.NewFromInt(500)))
	})

	t.Run("ApplyDelta follows original type", func(t *testing.T) {
		assertDecimal(t, 320, ApplyDelta(decimal.NewFromInt(350), EntryTypeCredit, decimal.NewFromInt(30)))
		assertDecimal(t, 380, ApplyDelta(decimal.NewFromInt(350), EntryTypeDebit, decimal.NewFromInt(30)))
		assertDecimal(t, 360, ApplyDelta(decimal.NewFromInt(350), EntryTypePayment, decimal.NewFromInt(-10)))
		assertDecimal(t, 0, ApplyDelta(decimal.NewFromInt(10), EntryTypeOrder, decimal.NewFromInt(-30)))
	})

	t.Run("Reverse undoes effect", func(t *testing.T) {
		assertDecimal(t, 400, Reverse(decimal.NewFromInt(350), EntryTypeCredit, decimal.NewFromInt(50)))
		assertDecimal(t, 300, Reverse(decimal.NewFromInt(350), EntryTypeAdjustment, decimal.NewFromInt(50)))
		assertDecimal(t, 0, Reverse(decimal.NewFromInt(20), EntryTypeDebit, decimal.NewFromInt(50)))
	})
}
