// Package services holds the two stateful surfaces of the module: the
// mutation API over the ledger document and the session/auth state machine.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// LedgerService is the only writer of a user's ledger document. Every
// mutation is a synchronous read-modify-write of the whole document: the
// stored ledger is loaded, a mutated deep copy is produced and written
// back, and the new snapshot is returned. There is no finer-grained
// locking because there is no concurrent writer.
type LedgerService struct {
	store    *storage.Store
	username string
	now      func() time.Time
}

// NewLedgerService binds the mutation API to one identity.
func NewLedgerService(store *storage.Store, username string) *LedgerService {
	return &LedgerService{store: store, username: username, now: time.Now}
}

// Ledger reads the current document without modifying it.
func (s *LedgerService) Ledger(ctx context.Context) (*core.Ledger, error) {
	return s.store.ReadLedger(ctx, s.username)
}

// apply runs one copy-on-write mutation against the stored document and
// persists the result. The mutation itself is pure; only the final write
// touches storage, so an error leaves the prior snapshot intact.
func (s *LedgerService) apply(ctx context.Context, op func(*core.Ledger) *core.Ledger) (*core.Ledger, error) {
	current, err := s.store.ReadLedger(ctx, s.username)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	next := op(current)
	if next == current {
		// No-op mutation (unknown id or rejected input); nothing to write.
		return current, nil
	}
	if err := s.store.WriteLedger(ctx, s.username, next); err != nil {
		return nil, fmt.Errorf("write ledger: %w", err)
	}
	return next, nil
}

// AddTransaction appends a transaction. Inputs arrive pre-validated from
// the form layer; only the structural invariants are checked here, and a
// structurally invalid record is dropped as a silent no-op rather than an
// error.
func (s *LedgerService) AddTransaction(ctx context.Context, t core.Transaction) (*core.Ledger, error) {
	if err := t.Validate(); err != nil {
		slog.WarnContext(ctx, "Transaction rejected", log.FieldUsername, s.username, log.FieldError, err.Error())
		return s.Ledger(ctx)
	}
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		next := l.AddTransaction(t)
		slog.InfoContext(ctx, "Transaction added",
			log.FieldUsername, s.username,
			"type", string(t.Type),
			log.FieldAmountCents, t.Amount,
			log.FieldAccount, t.AccountID)
		return next
	})
}

// DeleteTransaction removes a transaction by id. A savings-linked record
// is removed without re-deriving the goal's cached amount.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		next := l.DeleteTransaction(id)
		if next != l {
			slog.InfoContext(ctx, "Transaction deleted",
				log.FieldUsername, s.username,
				log.FieldTransaction, id)
		}
		return next
	})
}

// AddCategory creates a category of the given kind.
func (s *LedgerService) AddCategory(ctx context.Context, name string, kind core.TransactionType, color string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.AddCategory(core.Category{Name: name, Kind: kind, Color: color})
	})
}

// RenameCategory updates a category's display name.
func (s *LedgerService) RenameCategory(ctx context.Context, id, name string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.RenameCategory(id, name)
	})
}

// DeleteCategory removes a category, leaving any transaction references
// dangling for the display layer to tolerate.
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.DeleteCategory(id)
	})
}

// AddMethod creates a payment method.
func (s *LedgerService) AddMethod(ctx context.Context, name string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.AddMethod(core.Method{Name: name})
	})
}

// RenameMethod updates a payment method's name.
func (s *LedgerService) RenameMethod(ctx context.Context, id, name string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.RenameMethod(id, name)
	})
}

// DeleteMethod removes a payment method.
func (s *LedgerService) DeleteMethod(ctx context.Context, id string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.DeleteMethod(id)
	})
}

// AddAccount creates an account.
func (s *LedgerService) AddAccount(ctx context.Context, name string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.AddAccount(core.Account{Name: name})
	})
}

// RenameAccount updates an account's name.
func (s *LedgerService) RenameAccount(ctx context.Context, id, name string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.RenameAccount(id, name)
	})
}

// DeleteAccount removes an account; its transaction history stays.
func (s *LedgerService) DeleteAccount(ctx context.Context, id string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.DeleteAccount(id)
	})
}

// AddSavingsGoal creates a goal appended to the end of the display order.
func (s *LedgerService) AddSavingsGoal(ctx context.Context, purpose string, targetAmount, currentAmount int64) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		next := l.AddSavingsGoal(core.SavingsGoal{
			Purpose:       purpose,
			TargetAmount:  targetAmount,
			CurrentAmount: currentAmount,
		})
		slog.InfoContext(ctx, "Savings goal added",
			log.FieldUsername, s.username,
			"purpose", purpose,
			log.FieldAmountCents, targetAmount)
		return next
	})
}

// UpdateSavingsGoal records a deposit (Income) or withdrawal (Expense)
// against a goal: the cached amount and the synthetic linked transaction
// land in the same snapshot, so both are written or neither is.
func (s *LedgerService) UpdateSavingsGoal(ctx context.Context, id string, newAmount int64, transType core.TransactionType, amountChange int64) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.UpdateSavingsGoal(id, newAmount, transType, amountChange, s.now())
	})
}

// DeleteSavingsGoal removes a goal together with its linked transactions.
func (s *LedgerService) DeleteSavingsGoal(ctx context.Context, id string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		next := l.DeleteSavingsGoal(id)
		if next != l {
			slog.InfoContext(ctx, "Savings goal deleted",
				log.FieldUsername, s.username,
				log.FieldGoal, id)
		}
		return next
	})
}

// ReorderSavingsGoals applies the supplied full ordering; display order
// upstream only ever swaps neighbours, but any permutation is accepted.
func (s *LedgerService) ReorderSavingsGoals(ctx context.Context, orderedIDs []string) (*core.Ledger, error) {
	return s.apply(ctx, func(l *core.Ledger) *core.Ledger {
		return l.ReorderSavingsGoals(orderedIDs)
	})
}
