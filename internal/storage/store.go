// Package storage implements the identity store: credentials, one JSON
// ledger document per user, and the two persisted session scalars, all in
// a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"kakeibo/internal/core"
)

var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUser        = errors.New("unknown user")
)

// app_state keys for the two persisted scalars.
const (
	keySessionUser   = "session_user"
	keyAutoLoginUser = "auto_login_user"
)

const bcryptCost = 12

// UserRecord is what credential verification hands back to the auth layer.
type UserRecord struct {
	Username string
	HasPIN   bool
	Ledger   *core.Ledger
}

// Store is the SQLite-backed identity store. Ledger documents are written
// whole: callers merge before writing, there is no partial-field update.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the identity store at dbPath and
// runs pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUser registers a new identity with a seeded ledger. The password
// is stored as a bcrypt hash, never in the clear.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	exists, err := s.UserExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	doc, err := json.Marshal(core.NewLedger())
	if err != nil {
		return fmt.Errorf("encode seed ledger: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, ledger) VALUES (?, ?, ?)`,
		username, string(hash), string(doc))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "username", username)
	return nil
}

// UserExists reports whether the username is registered.
func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// VerifyCredentials checks username/password and returns the user record
// with its ledger on success, ErrInvalidCredentials otherwise. An unknown
// username reads the same as a wrong password.
func (s *Store) VerifyCredentials(ctx context.Context, username, password string) (*UserRecord, error) {
	var (
		hash string
		pin  sql.NullString
		doc  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash, pin, ledger FROM users WHERE username = ?`, username).
		Scan(&hash, &pin, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	ledger, err := decodeLedger(doc)
	if err != nil {
		return nil, err
	}
	return &UserRecord{Username: username, HasPIN: pin.Valid && pin.String != "", Ledger: ledger}, nil
}

// SetPIN stores the user's quick-login PIN. The PIN is kept as-is with no
// hashing or rate limiting; it only gates convenience login on a local,
// single-user database.
func (s *Store) SetPIN(ctx context.Context, username, pin string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET pin = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?`,
		pin, username)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownUser
	}
	slog.InfoContext(ctx, "PIN set", "username", username)
	return nil
}

// VerifyPIN checks the stored PIN and returns the user record on a match.
// Users with no PIN on file fail for any input.
func (s *Store) VerifyPIN(ctx context.Context, username, pin string) (*UserRecord, error) {
	var (
		stored sql.NullString
		doc    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT pin, ledger FROM users WHERE username = ?`, username).
		Scan(&stored, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	if !stored.Valid || stored.String == "" || stored.String != pin {
		return nil, ErrInvalidCredentials
	}

	ledger, err := decodeLedger(doc)
	if err != nil {
		return nil, err
	}
	return &UserRecord{Username: username, HasPIN: true, Ledger: ledger}, nil
}

// HasPIN reports whether the user has a PIN on file. Unknown users read
// as false so the startup probe needs no special case.
func (s *Store) HasPIN(ctx context.Context, username string) (bool, error) {
	var pin sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT pin FROM users WHERE username = ?`, username).Scan(&pin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query pin: %w", err)
	}
	return pin.Valid && pin.String != "", nil
}

// ReadLedger loads the user's full ledger document.
func (s *Store) ReadLedger(ctx context.Context, username string) (*core.Ledger, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT ledger FROM users WHERE username = ?`, username).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	return decodeLedger(doc)
}

// WriteLedger replaces the user's ledger document whole.
func (s *Store) WriteLedger(ctx context.Context, username string, l *core.Ledger) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET ledger = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?`,
		string(doc), username)
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownUser
	}
	return nil
}

// SessionUser returns the persisted active-session username, or "".
func (s *Store) SessionUser(ctx context.Context) (string, error) {
	return s.stateValue(ctx, keySessionUser)
}

// SetSessionUser persists the active-session username.
func (s *Store) SetSessionUser(ctx context.Context, username string) error {
	return s.setStateValue(ctx, keySessionUser, username)
}

// ClearSessionUser removes the active-session marker.
func (s *Store) ClearSessionUser(ctx context.Context) error {
	return s.clearStateValue(ctx, keySessionUser)
}

// AutoLoginUser returns the username eligible for PIN auto-login, or "".
func (s *Store) AutoLoginUser(ctx context.Context) (string, error) {
	return s.stateValue(ctx, keyAutoLoginUser)
}

// SetAutoLoginUser persists the auto-login marker.
func (s *Store) SetAutoLoginUser(ctx context.Context, username string) error {
	return s.setStateValue(ctx, keyAutoLoginUser, username)
}

// ClearAutoLoginUser removes the auto-login marker.
func (s *Store) ClearAutoLoginUser(ctx context.Context) error {
	return s.clearStateValue(ctx, keyAutoLoginUser)
}

func (s *Store) stateValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query app state %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setStateValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set app state %s: %w", key, err)
	}
	return nil
}

func (s *Store) clearStateValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear app state %s: %w", key, err)
	}
	return nil
}

func decodeLedger(doc string) (*core.Ledger, error) {
	var l core.Ledger
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return &l, nil
}
