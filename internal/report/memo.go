package report

import (
	"time"

	"kakeibo/internal/cache"
	"kakeibo/internal/core"
)

// Memo caches derived views keyed by ledger revision. Because every
// mutation stamps a new revision, a hit can never serve stale data; the
// cache only spares refolds of an unchanged transaction log.
type Memo struct {
	balances   cache.Cache[map[string]int64]
	totals     cache.Cache[MonthTotals]
	comparison cache.Cache[SpendingComparison]
	daily      cache.Cache[map[string]DayBucket]
}

// NewMemo creates a memoizing view layer. Sizing is modest on purpose:
// only a handful of (revision, month) pairs are ever live at once.
func NewMemo() *Memo {
	const (
		size = 32
		ttl  = 10 * time.Minute
	)
	return &Memo{
		balances:   cache.NewLRU[map[string]int64](size, ttl),
		totals:     cache.NewLRU[MonthTotals](size, ttl),
		comparison: cache.NewLRU[SpendingComparison](size, ttl),
		daily:      cache.NewLRU[map[string]DayBucket](size, ttl),
	}
}

func monthKey(revision string, ref time.Time) string {
	return revision + "|" + ref.Format("2006-01-02")
}

// AccountBalances is the cached counterpart of the package function.
func (m *Memo) AccountBalances(l *core.Ledger) map[string]int64 {
	if v, ok := m.balances.Get(l.Revision); ok {
		return v
	}
	v := AccountBalances(l)
	m.balances.Set(l.Revision, v)
	return v
}

// Totals is the cached counterpart of the package function.
func (m *Memo) Totals(l *core.Ledger, ref time.Time) MonthTotals {
	key := monthKey(l.Revision, ref)
	if v, ok := m.totals.Get(key); ok {
		return v
	}
	v := Totals(l, ref)
	m.totals.Set(key, v)
	return v
}

// CompareSpending is the cached counterpart of the package function.
func (m *Memo) CompareSpending(l *core.Ledger, ref time.Time) SpendingComparison {
	key := monthKey(l.Revision, ref)
	if v, ok := m.comparison.Get(key); ok {
		return v
	}
	v := CompareSpending(l, ref)
	m.comparison.Set(key, v)
	return v
}

// DailyIndex is the cached counterpart of the package function.
func (m *Memo) DailyIndex(l *core.Ledger) map[string]DayBucket {
	if v, ok := m.daily.Get(l.Revision); ok {
		return v
	}
	v := DailyIndex(l)
	m.daily.Set(l.Revision, v)
	return v
}
