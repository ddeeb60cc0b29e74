package core

import "github.com/google/uuid"

// Default starter set for new users: colors are display hints only, names
// are not protocol-mandated.
var (
	defaultCategories = []struct {
		name  string
		kind  TransactionType
		color string
	}{
		{"Salary", Income, "#10b981"},
		{"Bonus", Income, "#34d399"},
		{"Allowance", Income, "#6ee7b7"},
		{"Food", Expense, "#f43f5e"},
		{"Transport", Expense, "#fb923c"},
		{"Housing", Expense, "#facc15"},
		{"Medical", Expense, "#8b5cf6"},
		{"Hobby", Expense, "#ec4899"},
	}

	defaultMethods  = []string{"Cash", "Credit Card", "Debit Card", "Gift Card"}
	defaultAccounts = []string{"Main Bank", "Emergency Fund", "Cash Wallet"}
)

// NewLedger returns the seeded document a fresh user starts with: default
// categories, methods and accounts, no transactions, no savings goals.
func NewLedger() *Ledger {
	l := &Ledger{
		Revision:     uuid.NewString(),
		Transactions: []Transaction{},
		Categories:   make([]Category, 0, len(defaultCategories)),
		Methods:      make([]Method, 0, len(defaultMethods)),
		Accounts:     make([]Account, 0, len(defaultAccounts)),
		Savings:      []SavingsGoal{},
	}
	for _, c := range defaultCategories {
		l.Categories = append(l.Categories, Category{
			ID:    uuid.NewString(),
			Name:  c.name,
			Kind:  c.kind,
			Color: c.color,
		})
	}
	for _, name := range defaultMethods {
		l.Methods = append(l.Methods, Method{ID: uuid.NewString(), Name: name})
	}
	for _, name := range defaultAccounts {
		l.Accounts = append(l.Accounts, Account{ID: uuid.NewString(), Name: name})
	}
	return l
}
