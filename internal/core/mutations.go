package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mutations never modify the receiver: each one clones the document,
// applies the change, stamps a fresh revision and returns the new snapshot.
// Lookups that miss (unknown ids) return the receiver unchanged.

func (l *Ledger) touch() *Ledger {
	c := l.Clone()
	c.Revision = uuid.NewString()
	return c
}

// AddTransaction appends a transaction with a newly assigned id.
func (l *Ledger) AddTransaction(t Transaction) *Ledger {
	c := l.touch()
	t.ID = uuid.NewString()
	c.Transactions = append(c.Transactions, t)
	return c
}

// DeleteTransaction removes the transaction with the given id. The record
// is removed on its own; a linked savings goal keeps its cached amount.
func (l *Ledger) DeleteTransaction(id string) *Ledger {
	if !containsID(l.Transactions, id, func(t Transaction) string { return t.ID }) {
		return l
	}
	c := l.touch()
	c.Transactions = removeByID(c.Transactions, id, func(t Transaction) string { return t.ID })
	return c
}

// AddCategory appends a category with a newly assigned id.
func (l *Ledger) AddCategory(cat Category) *Ledger {
	c := l.touch()
	cat.ID = uuid.NewString()
	c.Categories = append(c.Categories, cat)
	return c
}

// RenameCategory updates the name of the category with the given id.
func (l *Ledger) RenameCategory(id, name string) *Ledger {
	if l.FindCategory(id) == nil {
		return l
	}
	c := l.touch()
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			c.Categories[i].Name = name
		}
	}
	return c
}

// DeleteCategory removes the category. Transactions referencing it keep
// their now-dangling id; readers render a fallback label.
func (l *Ledger) DeleteCategory(id string) *Ledger {
	if l.FindCategory(id) == nil {
		return l
	}
	c := l.touch()
	c.Categories = removeByID(c.Categories, id, func(x Category) string { return x.ID })
	return c
}

// AddMethod appends a payment method with a newly assigned id.
func (l *Ledger) AddMethod(m Method) *Ledger {
	c := l.touch()
	m.ID = uuid.NewString()
	c.Methods = append(c.Methods, m)
	return c
}

// RenameMethod updates the name of the method with the given id.
func (l *Ledger) RenameMethod(id, name string) *Ledger {
	if !containsID(l.Methods, id, func(x Method) string { return x.ID }) {
		return l
	}
	c := l.touch()
	for i := range c.Methods {
		if c.Methods[i].ID == id {
			c.Methods[i].Name = name
		}
	}
	return c
}

// DeleteMethod removes the payment method, leaving references dangling.
func (l *Ledger) DeleteMethod(id string) *Ledger {
	if !containsID(l.Methods, id, func(x Method) string { return x.ID }) {
		return l
	}
	c := l.touch()
	c.Methods = removeByID(c.Methods, id, func(x Method) string { return x.ID })
	return c
}

// AddAccount appends an account with a newly assigned id.
func (l *Ledger) AddAccount(a Account) *Ledger {
	c := l.touch()
	a.ID = uuid.NewString()
	c.Accounts = append(c.Accounts, a)
	return c
}

// RenameAccount updates the name of the account with the given id.
func (l *Ledger) RenameAccount(id, name string) *Ledger {
	if !containsID(l.Accounts, id, func(x Account) string { return x.ID }) {
		return l
	}
	c := l.touch()
	for i := range c.Accounts {
		if c.Accounts[i].ID == id {
			c.Accounts[i].Name = name
		}
	}
	return c
}

// DeleteAccount removes the account. Its transactions are kept, so the
// orphaned balance simply stops being reported.
func (l *Ledger) DeleteAccount(id string) *Ledger {
	if !containsID(l.Accounts, id, func(x Account) string { return x.ID }) {
		return l
	}
	c := l.touch()
	c.Accounts = removeByID(c.Accounts, id, func(x Account) string { return x.ID })
	return c
}

// AddSavingsGoal appends a goal at the end of the display order.
func (l *Ledger) AddSavingsGoal(g SavingsGoal) *Ledger {
	c := l.touch()
	g.ID = uuid.NewString()
	g.Order = len(c.Savings)
	c.Savings = append(c.Savings, g)
	return c
}

// UpdateSavingsGoal rewrites the goal's cached amount and records the
// deposit (Income) or withdrawal (Expense) as a linked transaction in the
// same snapshot, so no intermediate state is observable. The transaction
// uses a category named "Savings" of the matching kind when one exists,
// otherwise the first category of that kind, plus the first account and
// method as defaults. Unknown goal ids are a silent no-op.
func (l *Ledger) UpdateSavingsGoal(id string, newAmount int64, transType TransactionType, amountChange int64, now time.Time) *Ledger {
	goal := l.FindGoal(id)
	if goal == nil {
		return l
	}

	c := l.touch()
	for i := range c.Savings {
		if c.Savings[i].ID == id {
			c.Savings[i].CurrentAmount = newAmount
		}
	}

	action := "deposit"
	if transType == Expense {
		action = "withdrawal"
	}
	t := Transaction{
		ID:        uuid.NewString(),
		Type:      transType,
		Amount:    amountChange,
		Date:      now,
		Memo:      goal.Purpose + " (" + action + ")",
		SavingsID: id,
	}
	if cat := c.savingsCategory(transType); cat != nil {
		t.CategoryID = cat.ID
	}
	if len(c.Accounts) > 0 {
		t.AccountID = c.Accounts[0].ID
	}
	if len(c.Methods) > 0 {
		t.MethodID = c.Methods[0].ID
	}
	c.Transactions = append(c.Transactions, t)
	return c
}

// savingsCategory picks the category for a synthetic savings transaction:
// a category literally named "Savings" of the given kind wins, else the
// first category of that kind.
func (l *Ledger) savingsCategory(kind TransactionType) *Category {
	var first *Category
	for i := range l.Categories {
		cat := &l.Categories[i]
		if cat.Kind != kind {
			continue
		}
		if strings.EqualFold(cat.Name, "Savings") {
			return cat
		}
		if first == nil {
			first = cat
		}
	}
	return first
}

// DeleteSavingsGoal removes the goal and every transaction linked to it.
// This is the one cascading delete in the system.
func (l *Ledger) DeleteSavingsGoal(id string) *Ledger {
	if l.FindGoal(id) == nil {
		return l
	}
	c := l.touch()
	c.Savings = removeByID(c.Savings, id, func(g SavingsGoal) string { return g.ID })
	kept := c.Transactions[:0]
	for _, t := range c.Transactions {
		if t.SavingsID != id {
			kept = append(kept, t)
		}
	}
	c.Transactions = kept
	return c
}

// ReorderSavingsGoals rearranges goals to the supplied id sequence and
// reassigns Order to the dense ranking 0..n-1. Unknown ids are skipped and
// goals missing from the sequence keep their relative order at the end, so
// the ranking stays dense for any input.
func (l *Ledger) ReorderSavingsGoals(orderedIDs []string) *Ledger {
	c := l.touch()

	byID := make(map[string]SavingsGoal, len(c.Savings))
	for _, g := range c.Savings {
		byID[g.ID] = g
	}

	reordered := make([]SavingsGoal, 0, len(c.Savings))
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if g, ok := byID[id]; ok && !seen[id] {
			reordered = append(reordered, g)
			seen[id] = true
		}
	}
	for _, g := range c.Savings {
		if !seen[g.ID] {
			reordered = append(reordered, g)
		}
	}
	for i := range reordered {
		reordered[i].Order = i
	}
	c.Savings = reordered
	return c
}

func containsID[T any](items []T, id string, key func(T) string) bool {
	for _, it := range items {
		if key(it) == id {
			return true
		}
	}
	return false
}

func removeByID[T any](items []T, id string, key func(T) string) []T {
	kept := items[:0]
	for _, it := range items {
		if key(it) != id {
			kept = append(kept, it)
		}
	}
	return kept
}
