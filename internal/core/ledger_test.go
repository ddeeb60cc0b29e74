package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name: "valid expense",
			tx:   Transaction{Type: Expense, CategoryID: "c1", AccountID: "a1", Amount: 400, Date: date},
		},
		{
			name: "valid transfer",
			tx:   Transaction{Type: Transfer, AccountID: "a1", TargetAccountID: "a2", Amount: 200, Date: date},
		},
		{
			name:    "zero amount",
			tx:      Transaction{Type: Income, CategoryID: "c1", AccountID: "a1", Amount: 0, Date: date},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			tx:      Transaction{Type: Income, CategoryID: "c1", AccountID: "a1", Amount: -5, Date: date},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "no account",
			tx:      Transaction{Type: Income, CategoryID: "c1", Amount: 100, Date: date},
			wantErr: ErrMissingAccount,
		},
		{
			name:    "income without category",
			tx:      Transaction{Type: Income, AccountID: "a1", Amount: 100, Date: date},
			wantErr: ErrMissingCategory,
		},
		{
			name:    "transfer without target",
			tx:      Transaction{Type: Transfer, AccountID: "a1", Amount: 100, Date: date},
			wantErr: ErrMissingAccount,
		},
		{
			name:    "transfer to same account",
			tx:      Transaction{Type: Transfer, AccountID: "a1", TargetAccountID: "a1", Amount: 100, Date: date},
			wantErr: ErrSameAccount,
		},
		{
			name:    "unknown type",
			tx:      Transaction{Type: TransactionType("LOAN"), AccountID: "a1", Amount: 100, Date: date},
			wantErr: ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tx.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLedgerSeed(t *testing.T) {
	l := NewLedger()

	if l.Revision == "" {
		t.Error("seeded ledger has no revision")
	}
	if len(l.Transactions) != 0 {
		t.Errorf("seeded ledger has %d transactions, want 0", len(l.Transactions))
	}
	if len(l.Savings) != 0 {
		t.Errorf("seeded ledger has %d savings goals, want 0", len(l.Savings))
	}
	if len(l.Methods) != 4 {
		t.Errorf("seeded ledger has %d methods, want 4", len(l.Methods))
	}
	if len(l.Accounts) != 3 {
		t.Errorf("seeded ledger has %d accounts, want 3", len(l.Accounts))
	}

	var income, expense int
	for _, c := range l.Categories {
		switch c.Kind {
		case Income:
			income++
		case Expense:
			expense++
		}
		if c.ID == "" || c.Name == "" || c.Color == "" {
			t.Errorf("seed category incomplete: %+v", c)
		}
	}
	if income != 3 || expense != 5 {
		t.Errorf("seed categories = %d income, %d expense; want 3 and 5", income, expense)
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := NewLedger()
	l.Transactions = append(l.Transactions, Transaction{ID: "t1", Type: Income, CategoryID: "c1", AccountID: "a1", Amount: 100})

	c := l.Clone()
	c.Transactions[0].Amount = 999
	c.Categories[0].Name = "changed"
	c.Savings = append(c.Savings, SavingsGoal{ID: "g1"})

	if l.Transactions[0].Amount != 100 {
		t.Error("clone shares transaction backing array with original")
	}
	if l.Categories[0].Name == "changed" {
		t.Error("clone shares category backing array with original")
	}
	if len(l.Savings) != 0 {
		t.Error("clone shares savings slice with original")
	}
}
