package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Apply folds one entry into a running balance.
func Apply(balance decimal.Decimal, t EntryType, amount decimal.Decimal) decimal.Decimal {
	switch t.Direction() {
	case DirectionDecrease:
		return balance.Sub(amount)
	case DirectionReset:
		return amount
	default:
		return balance.Add(amount)
	}
}

// Fold computes the balance of entries in the order given. Callers that
// hold unsorted entries should use SortChronological first.
func Fold(entries []Entry) decimal.Decimal {
	balance := decimal.Zero
	for i := range entries {
		balance = Apply(balance, entries[i].Type, entries[i].Amount)
	}
	return balance
}

// SortChronological orders entries by entry date, then creation time
func SortChronological(entries []Entry) {
	slices.SortStableFunc(entries, compareChronological)
}

func compareChronological(a, b Entry) int {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// BalanceAt folds every entry dated on or before cutoff. A zero cutoff
// folds everything. The input slice is not modified.
func BalanceAt(entries []Entry, cutoff time.Time) decimal.Decimal {
	sorted := slices.Clone(entries)
	SortChronological(sorted)
	if !cutoff.IsZero() {
		n := 0
		for n < len(sorted) && !sorted[n].EntryDate.After(cutoff) {
			n++
		}
		sorted = sorted[:n]
	}
	return Fold(sorted)
}

// StatementLine is one entry with the balance after it was applied
type StatementLine struct {
	Entry          Entry
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	RunningBalance decimal.Decimal
}

// Statement computes running balances in chronological order and returns
// the lines newest first for display. opening carries the balance brought
// forward from before the first entry.
func Statement(entries []Entry, opening decimal.Decimal) []StatementLine {
	sorted := slices.Clone(entries)
	SortChronological(sorted)

	lines := make([]StatementLine, 0, len(sorted))
	balance := opening
	for _, e := range sorted {
		balance = Apply(balance, e.Type, e.Amount)
		line := StatementLine{Entry: e, Debit: decimal.Zero, Credit: decimal.Zero, RunningBalance: balance}
		switch {
		case e.Type.Direction() == DirectionDecrease:
			line.Credit = e.Amount
		case e.Amount.IsNegative():
			line.Credit = e.Amount.Neg()
		default:
			line.Debit = e.Amount
		}
		lines = append(lines, line)
	}
	slices.Reverse(lines)
	return lines
}

// ApplyToOutstanding moves a cached outstanding amount by one entry.
// The cache never goes below zero.
func ApplyToOutstanding(outstanding decimal.Decimal, t EntryType, amount decimal.Decimal) decimal.Decimal {
	return FloorZero(Apply(outstanding, t, amount))
}

// ApplyDelta moves a cached outstanding amount by the change in an entry's
// amount. Decreasing types subtract the delta, everything else adds it.
func ApplyDelta(outstanding decimal.Decimal, t EntryType, delta decimal.Decimal) decimal.Decimal {
	if t.Direction() == DirectionDecrease {
		return FloorZero(outstanding.Sub(delta))
	}
	return FloorZero(outstanding.Add(delta))
}

// Reverse undoes one entry's effect on a cached outstanding amount.
func Reverse(outstanding decimal.Decimal, t EntryType, amount decimal.Decimal) decimal.Decimal {
	if t.Direction() == DirectionDecrease {
		return FloorZero(outstanding.Add(amount))
	}
	return FloorZero(outstanding.Sub(amount))
}

// FloorZero clamps negative values to zero
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
