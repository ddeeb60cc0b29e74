package core

import (
	"errors"
	"time"
)

const (
	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"
)

type (
	TransactionType string

	// Category classifies non-transfer transactions. Kind is Income or
	// Expense and must match the transaction type it is attached to.
	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Kind  TransactionType `json:"kind"`
		Color string          `json:"color"`
	}

	// Method is a payment instrument label (cash, card, ...).
	Method struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Account is a place money is held.
	Account struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Transaction is a single ledger event. Amounts are positive minor
	// currency units. CategoryID and MethodID are set iff the type is not
	// Transfer; TargetAccountID is set iff the type is Transfer.
	Transaction struct {
		ID              string          `json:"id"`
		Type            TransactionType `json:"type"`
		CategoryID      string          `json:"categoryId,omitempty"`
		MethodID        string          `json:"methodId,omitempty"`
		AccountID       string          `json:"accountId"`
		TargetAccountID string          `json:"targetAccountId,omitempty"`
		Amount          int64           `json:"amount"`
		Date            time.Time       `json:"date"`
		Memo            string          `json:"memo"`
		SavingsID       string          `json:"savingsId,omitempty"`
	}

	// SavingsGoal tracks a named target. CurrentAmount is a cached running
	// total maintained by the mutation API, not recomputed on read.
	SavingsGoal struct {
		ID            string `json:"id"`
		Purpose       string `json:"purpose"`
		CurrentAmount int64  `json:"currentAmount"`
		TargetAmount  int64  `json:"targetAmount"`
		Order         int    `json:"order"`
	}

	// Ledger is the complete per-user document. Revision changes on every
	// mutation so derived views can be memoized by document identity.
	Ledger struct {
		Revision     string        `json:"revision"`
		Transactions []Transaction `json:"transactions"`
		Categories   []Category    `json:"categories"`
		Methods      []Method      `json:"methods"`
		Accounts     []Account     `json:"accounts"`
		Savings      []SavingsGoal `json:"savings"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrMissingAccount  = errors.New("missing account")
	ErrSameAccount     = errors.New("transfer target equals source account")
	ErrMissingCategory = errors.New("missing category")
)

// Validate checks the structural invariants of a transaction. The form
// layer is trusted for everything beyond these.
func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.AccountID == "" {
		return ErrMissingAccount
	}
	switch t.Type {
	case Income, Expense:
		if t.CategoryID == "" {
			return ErrMissingCategory
		}
	case Transfer:
		if t.TargetAccountID == "" {
			return ErrMissingAccount
		}
		if t.TargetAccountID == t.AccountID {
			return ErrSameAccount
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// Clone returns a deep copy of the ledger. Mutations always operate on a
// copy so a failed write never leaves a partially modified document behind.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Revision:     l.Revision,
		Transactions: make([]Transaction, len(l.Transactions)),
		Categories:   make([]Category, len(l.Categories)),
		Methods:      make([]Method, len(l.Methods)),
		Accounts:     make([]Account, len(l.Accounts)),
		Savings:      make([]SavingsGoal, len(l.Savings)),
	}
	copy(c.Transactions, l.Transactions)
	copy(c.Categories, l.Categories)
	copy(c.Methods, l.Methods)
	copy(c.Accounts, l.Accounts)
	copy(c.Savings, l.Savings)
	return c
}

// FindCategory returns the category with the given id, or nil.
func (l *Ledger) FindCategory(id string) *Category {
	for i := range l.Categories {
		if l.Categories[i].ID == id {
			return &l.Categories[i]
		}
	}
	return nil
}

// FindGoal returns the savings goal with the given id, or nil.
func (l *Ledger) FindGoal(id string) *SavingsGoal {
	for i := range l.Savings {
		if l.Savings[i].ID == id {
			return &l.Savings[i]
		}
	}
	return nil
}
