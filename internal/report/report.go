// Package report derives read-only views from a ledger document: account
// balances, monthly totals, spending comparison curves, category
// composition, the calendar day index and savings goal progress.
//
// Every function here is a pure projection of (ledger, reference date).
// Nothing mutates and nothing touches storage.
package report

import (
	"math"
	"sort"
	"time"

	"kakeibo/internal/core"
)

const dayKeyFormat = "2006-01-02"

// MonthTotals holds income and expense sums for one calendar month.
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  int64
	Expense int64
}

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	CategoryID string
	Name       string
	Color      string
	Amount     int64
}

// DayBucket groups one calendar day's transactions.
type DayBucket struct {
	Income  int64
	Expense int64
	Items   []core.Transaction
}

// SpendingComparison aligns the reference month's cumulative daily expense
// curve with the previous calendar month's, by day-of-month index.
type SpendingComparison struct {
	// Days runs 1..len(Previous). Current[i] is valid only when
	// CurrentKnown[i] is true; days after the reference day have no value
	// yet.
	Current      []int64
	CurrentKnown []bool
	Previous     []int64

	// Diff and Percent compare the two cumulative series at the reference
	// day-of-month. Percent is 0 when the previous cumulative is 0.
	Diff    int64
	Percent int
}

// AccountBalances folds the full transaction log into per-account balances.
// Listed accounts start at 0; transactions referencing ids that are no
// longer listed still accumulate, so transfers keep netting to zero.
func AccountBalances(l *core.Ledger) map[string]int64 {
	balances := make(map[string]int64, len(l.Accounts))
	for _, a := range l.Accounts {
		balances[a.ID] = 0
	}
	for _, t := range l.Transactions {
		switch t.Type {
		case core.Income:
			balances[t.AccountID] += t.Amount
		case core.Expense:
			balances[t.AccountID] -= t.Amount
		case core.Transfer:
			balances[t.AccountID] -= t.Amount
			if t.TargetAccountID != "" {
				balances[t.TargetAccountID] += t.Amount
			}
		}
	}
	return balances
}

// TotalBalance sums all account balances.
func TotalBalance(l *core.Ledger) int64 {
	var total int64
	for _, b := range AccountBalances(l) {
		total += b
	}
	return total
}

// Totals sums income and expense amounts for the calendar month of ref.
func Totals(l *core.Ledger, ref time.Time) MonthTotals {
	totals := MonthTotals{Year: ref.Year(), Month: ref.Month()}
	for _, t := range l.Transactions {
		if !sameMonth(t.Date, ref) {
			continue
		}
		switch t.Type {
		case core.Income:
			totals.Income += t.Amount
		case core.Expense:
			totals.Expense += t.Amount
		}
	}
	return totals
}

// CompareSpending builds the cumulative daily expense curves for ref's
// month and the immediately preceding month, aligned by day number. The
// current month's series stops at ref's day; the previous month's runs in
// full.
func CompareSpending(l *core.Ledger, ref time.Time) SpendingComparison {
	prevRef := time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, ref.Location())

	days := daysInMonth(ref)
	if p := daysInMonth(prevRef); p > days {
		days = p
	}

	curDaily := make([]int64, days+1)
	prevDaily := make([]int64, days+1)
	for _, t := range l.Transactions {
		if t.Type != core.Expense {
			continue
		}
		d := t.Date.Day()
		if d > days {
			continue
		}
		if sameMonth(t.Date, ref) {
			curDaily[d] += t.Amount
		} else if sameMonth(t.Date, prevRef) {
			prevDaily[d] += t.Amount
		}
	}

	cmp := SpendingComparison{
		Current:      make([]int64, days),
		CurrentKnown: make([]bool, days),
		Previous:     make([]int64, days),
	}
	var curSum, prevSum int64
	today := ref.Day()
	for d := 1; d <= days; d++ {
		curSum += curDaily[d]
		prevSum += prevDaily[d]
		cmp.Previous[d-1] = prevSum
		if d <= today {
			cmp.Current[d-1] = curSum
			cmp.CurrentKnown[d-1] = true
		}
	}

	curToday := cmp.Current[today-1]
	prevToday := cmp.Previous[today-1]
	cmp.Diff = curToday - prevToday
	if prevToday != 0 {
		cmp.Percent = int(math.Round(float64(cmp.Diff) / float64(prevToday) * 100))
	}
	return cmp
}

// ByCategory groups ref-month transactions of the given type by category
// and sums their amounts. Categories that sum to zero are left out.
func ByCategory(l *core.Ledger, kind core.TransactionType, ref time.Time) []CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range l.Transactions {
		if t.Type != kind || !sameMonth(t.Date, ref) {
			continue
		}
		sums[t.CategoryID] += t.Amount
	}

	out := make([]CategoryAmount, 0, len(sums))
	for _, c := range l.Categories {
		if c.Kind != kind {
			continue
		}
		if sum := sums[c.ID]; sum > 0 {
			out = append(out, CategoryAmount{
				CategoryID: c.ID,
				Name:       c.Name,
				Color:      c.Color,
				Amount:     sum,
			})
		}
	}
	return out
}

// DailyIndex buckets every transaction by its calendar date, keyed by ISO
// date string. Transfers show up in Items but contribute to neither sum.
func DailyIndex(l *core.Ledger) map[string]DayBucket {
	index := make(map[string]DayBucket)
	for _, t := range l.Transactions {
		key := t.Date.Format(dayKeyFormat)
		bucket := index[key]
		switch t.Type {
		case core.Income:
			bucket.Income += t.Amount
		case core.Expense:
			bucket.Expense += t.Amount
		}
		bucket.Items = append(bucket.Items, t)
		index[key] = bucket
	}
	return index
}

// GoalProgress reports a savings goal's completion as a whole percentage,
// capped at 100. Goals with no positive target read as 0.
func GoalProgress(g core.SavingsGoal) int {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := math.Floor(math.Min(100, float64(g.CurrentAmount)/float64(g.TargetAmount)*100))
	return int(p)
}

// GoalHistory lists the transactions recorded for a goal, newest first.
func GoalHistory(l *core.Ledger, goalID string) []core.Transaction {
	var history []core.Transaction
	for _, t := range l.Transactions {
		if t.SavingsID == goalID {
			history = append(history, t)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
