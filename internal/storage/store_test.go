package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kakeibo/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "kakeibo.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateUser(ctx, "alice", "secret"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	t.Run("duplicate username", func(t *testing.T) {
		err := store.CreateUser(ctx, "alice", "other")
		if !errors.Is(err, ErrDuplicateUser) {
			t.Errorf("CreateUser() error = %v, want ErrDuplicateUser", err)
		}
	})

	t.Run("seeded ledger", func(t *testing.T) {
		l, err := store.ReadLedger(ctx, "alice")
		if err != nil {
			t.Fatalf("ReadLedger() error = %v", err)
		}
		if len(l.Categories) == 0 || len(l.Methods) == 0 || len(l.Accounts) == 0 {
			t.Error("new user's ledger is missing seed data")
		}
		if len(l.Transactions) != 0 {
			t.Errorf("new user's ledger has %d transactions, want 0", len(l.Transactions))
		}
	})
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.CreateUser(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}

	t.Run("correct password", func(t *testing.T) {
		rec, err := store.VerifyCredentials(ctx, "alice", "secret")
		if err != nil {
			t.Fatalf("VerifyCredentials() error = %v", err)
		}
		if rec.Username != "alice" || rec.HasPIN {
			t.Errorf("record = %+v, want alice without PIN", rec)
		}
		if rec.Ledger == nil {
			t.Error("record carries no ledger")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := store.VerifyCredentials(ctx, "alice", "nope")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user reads like wrong password", func(t *testing.T) {
		_, err := store.VerifyCredentials(ctx, "nobody", "secret")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestPINLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.CreateUser(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}

	t.Run("no pin on file fails any input", func(t *testing.T) {
		_, err := store.VerifyPIN(ctx, "alice", "0000")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
		hasPIN, err := store.HasPIN(ctx, "alice")
		if err != nil || hasPIN {
			t.Errorf("HasPIN() = %v, %v; want false, nil", hasPIN, err)
		}
	})

	if err := store.SetPIN(ctx, "alice", "1234"); err != nil {
		t.Fatalf("SetPIN() error = %v", err)
	}

	t.Run("matching pin", func(t *testing.T) {
		rec, err := store.VerifyPIN(ctx, "alice", "1234")
		if err != nil {
			t.Fatalf("VerifyPIN() error = %v", err)
		}
		if !rec.HasPIN {
			t.Error("record should report a PIN on file")
		}
	})

	t.Run("wrong pin", func(t *testing.T) {
		_, err := store.VerifyPIN(ctx, "alice", "4321")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("set pin for unknown user", func(t *testing.T) {
		err := store.SetPIN(ctx, "nobody", "1234")
		if !errors.Is(err, ErrUnknownUser) {
			t.Errorf("error = %v, want ErrUnknownUser", err)
		}
	})

	t.Run("unknown user probe", func(t *testing.T) {
		hasPIN, err := store.HasPIN(ctx, "nobody")
		if err != nil || hasPIN {
			t.Errorf("HasPIN() = %v, %v; want false, nil", hasPIN, err)
		}
	})
}

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.CreateUser(ctx, "alice", "secret"); err != nil {
		t.Fatal(err)
	}

	l, err := store.ReadLedger(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	next := l.AddTransaction(core.Transaction{
		Type:       core.Expense,
		CategoryID: l.Categories[0].ID,
		AccountID:  l.Accounts[0].ID,
		Amount:     1200,
	})
	if err := store.WriteLedger(ctx, "alice", next); err != nil {
		t.Fatalf("WriteLedger() error = %v", err)
	}

	got, err := store.ReadLedger(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Revision != next.Revision {
		t.Errorf("revision = %q, want %q", got.Revision, next.Revision)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Amount != 1200 {
		t.Errorf("transactions = %+v, want the written record back", got.Transactions)
	}

	t.Run("unknown user", func(t *testing.T) {
		if _, err := store.ReadLedger(ctx, "nobody"); !errors.Is(err, ErrUnknownUser) {
			t.Errorf("ReadLedger() error = %v, want ErrUnknownUser", err)
		}
		if err := store.WriteLedger(ctx, "nobody", next); !errors.Is(err, ErrUnknownUser) {
			t.Errorf("WriteLedger() error = %v, want ErrUnknownUser", err)
		}
	})
}

func TestSessionScalars(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, tt := range []struct {
		name  string
		get   func(context.Context) (string, error)
		set   func(context.Context, string) error
		clear func(context.Context) error
	}{
		{"session user", store.SessionUser, store.SetSessionUser, store.ClearSessionUser},
		{"auto-login user", store.AutoLoginUser, store.SetAutoLoginUser, store.ClearAutoLoginUser},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := tt.get(ctx); err != nil || got != "" {
				t.Fatalf("initial value = %q, %v; want empty", got, err)
			}
			if err := tt.set(ctx, "alice"); err != nil {
				t.Fatal(err)
			}
			if err := tt.set(ctx, "bob"); err != nil {
				t.Fatal(err)
			}
			if got, _ := tt.get(ctx); got != "bob" {
				t.Errorf("value = %q, want bob (last write wins)", got)
			}
			if err := tt.clear(ctx); err != nil {
				t.Fatal(err)
			}
			if got, _ := tt.get(ctx); got != "" {
				t.Errorf("value after clear = %q, want empty", got)
			}
		})
	}
}
