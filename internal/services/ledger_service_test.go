package services

import (
	"context"
	"testing"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

func newTestService(t *testing.T) (*LedgerService, *storage.Store) {
	t.Helper()
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.CreateUser(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}
	return NewLedgerService(store, "alice"), store
}

func TestAddTransactionPersists(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	before, err := svc.Ledger(ctx)
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.AddTransaction(ctx, core.Transaction{
		Type:       core.Expense,
		CategoryID: before.Categories[0].ID,
		AccountID:  before.Accounts[0].ID,
		Amount:     2500,
		Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if len(next.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(next.Transactions))
	}
	if next.Revision == before.Revision {
		t.Error("revision did not advance")
	}

	// The write is durable: a fresh read sees the same snapshot.
	stored, err := store.ReadLedger(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Revision != next.Revision || len(stored.Transactions) != 1 {
		t.Errorf("stored snapshot = rev %q with %d transactions, want rev %q with 1",
			stored.Revision, len(stored.Transactions), next.Revision)
	}
}

func TestAddTransactionInvalidInputIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	before, err := svc.Ledger(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Zero amount fails structural validation; the document must not change.
	next, err := svc.AddTransaction(ctx, core.Transaction{
		Type:       core.Expense,
		CategoryID: before.Categories[0].ID,
		AccountID:  before.Accounts[0].ID,
		Amount:     0,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v, want silent no-op", err)
	}
	if next.Revision != before.Revision || len(next.Transactions) != 0 {
		t.Errorf("snapshot changed on invalid input: rev %q -> %q", before.Revision, next.Revision)
	}
}

func TestNoopMutationSkipsWrite(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	before, err := svc.Ledger(ctx)
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.DeleteSavingsGoal(ctx, "no-such-goal")
	if err != nil {
		t.Fatal(err)
	}
	if next.Revision != before.Revision {
		t.Errorf("revision advanced on a no-op delete: %q -> %q", before.Revision, next.Revision)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	next, err := svc.AddCategory(ctx, "Pets", core.Expense, "#f97316")
	if err != nil {
		t.Fatal(err)
	}
	var pets *core.Category
	for i := range next.Categories {
		if next.Categories[i].Name == "Pets" {
			pets = &next.Categories[i]
		}
	}
	if pets == nil {
		t.Fatal("added category not found")
	}
	if pets.ID == "" || pets.Kind != core.Expense {
		t.Errorf("category = %+v", pets)
	}

	next, err = svc.RenameCategory(ctx, pets.ID, "Pet Care")
	if err != nil {
		t.Fatal(err)
	}
	if got := next.FindCategory(pets.ID).Name; got != "Pet Care" {
		t.Errorf("renamed category = %q, want Pet Care", got)
	}

	next, err = svc.DeleteCategory(ctx, pets.ID)
	if err != nil {
		t.Fatal(err)
	}
	if next.FindCategory(pets.ID) != nil {
		t.Error("category still present after delete")
	}
}

func TestSavingsGoalRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

	next, err := svc.AddSavingsGoal(ctx, "trip to Kyoto", 100000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Savings) != 1 {
		t.Fatalf("got %d goals, want 1", len(next.Savings))
	}
	goalID := next.Savings[0].ID

	next, err = svc.UpdateSavingsGoal(ctx, goalID, 20000, core.Income, 20000)
	if err != nil {
		t.Fatal(err)
	}
	if got := next.Savings[0].CurrentAmount; got != 20000 {
		t.Errorf("currentAmount = %d, want 20000", got)
	}
	// Both halves of the dual write land in one snapshot.
	var linked int
	for _, tx := range next.Transactions {
		if tx.SavingsID == goalID {
			linked++
			if !tx.Date.Equal(svc.now()) {
				t.Errorf("linked transaction date = %v, want the service clock", tx.Date)
			}
		}
	}
	if linked != 1 {
		t.Fatalf("got %d linked transactions, want 1", linked)
	}

	next, err = svc.DeleteSavingsGoal(ctx, goalID)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Savings) != 0 || len(next.Transactions) != 0 {
		t.Errorf("after cascade: %d goals, %d transactions; want 0/0",
			len(next.Savings), len(next.Transactions))
	}
}

func TestReorderSavingsGoalsPersists(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	var l *core.Ledger
	var err error
	for _, p := range []string{"first", "second", "third"} {
		if l, err = svc.AddSavingsGoal(ctx, p, 1000, 0); err != nil {
			t.Fatal(err)
		}
	}

	reversed := []string{l.Savings[2].ID, l.Savings[1].ID, l.Savings[0].ID}
	if _, err := svc.ReorderSavingsGoals(ctx, reversed); err != nil {
		t.Fatal(err)
	}

	stored, err := store.ReadLedger(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Savings[0].Purpose != "third" || stored.Savings[2].Purpose != "first" {
		t.Errorf("stored order = %q,%q,%q; want third,second,first",
			stored.Savings[0].Purpose, stored.Savings[1].Purpose, stored.Savings[2].Purpose)
	}
}
