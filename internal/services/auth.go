package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// AuthState enumerates the screens of the login flow.
type AuthState string

const (
	StateLogin         AuthState = "LOGIN"
	StateSignup        AuthState = "SIGNUP"
	StatePinSetup      AuthState = "PIN_SETUP"
	StatePinLogin      AuthState = "PIN_LOGIN"
	StateAuthenticated AuthState = "AUTHENTICATED"
)

// User-facing flow messages. The presentation layer shows these verbatim.
const (
	msgMissingFields  = "enter a username and password"
	msgDuplicateUser  = "that username is already taken"
	msgSignupDone     = "account created, please sign in"
	msgBadCredentials = "incorrect username or password"
	msgBadPIN         = "incorrect PIN"
	msgIncompletePIN  = "enter all 4 digits"
)

// AuthMachine is the session state machine: it owns the current view
// state, the active identity and transient messages, and drives the
// persisted session and auto-login markers. One machine means one active
// identity; there are no concurrent sessions.
type AuthMachine struct {
	store    *storage.Store
	state    AuthState
	username string
	errMsg   string
	infoMsg  string
}

// NewAuthMachine computes the initial state from the persisted auto-login
// marker: when a marked user with a PIN on file exists the flow starts at
// PIN_LOGIN with the username pre-filled, otherwise at LOGIN.
func NewAuthMachine(ctx context.Context, store *storage.Store) (*AuthMachine, error) {
	m := &AuthMachine{store: store, state: StateLogin}

	auto, err := store.AutoLoginUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("read auto-login marker: %w", err)
	}
	if auto != "" {
		hasPIN, err := store.HasPIN(ctx, auto)
		if err != nil {
			return nil, fmt.Errorf("probe pin: %w", err)
		}
		if hasPIN {
			m.state = StatePinLogin
			m.username = auto
		}
	}
	return m, nil
}

// State returns the current flow state.
func (m *AuthMachine) State() AuthState { return m.state }

// Username returns the pre-filled or authenticated identity, or "".
func (m *AuthMachine) Username() string { return m.username }

// ErrorMessage returns the transient error to surface, or "".
func (m *AuthMachine) ErrorMessage() string { return m.errMsg }

// Message returns the transient success message to surface, or "".
func (m *AuthMachine) Message() string { return m.infoMsg }

// ResumeSession restores a still-persisted session from a previous run,
// jumping straight to AUTHENTICATED. Returns false when no session marker
// exists or the marked user is gone.
func (m *AuthMachine) ResumeSession(ctx context.Context) (bool, error) {
	username, err := m.store.SessionUser(ctx)
	if err != nil {
		return false, fmt.Errorf("read session marker: %w", err)
	}
	if username == "" {
		return false, nil
	}
	exists, err := m.store.UserExists(ctx, username)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	m.state = StateAuthenticated
	m.username = username
	m.errMsg, m.infoMsg = "", ""
	return true, nil
}

// ToggleView flips between LOGIN and SIGNUP, clearing transient messages.
// In any other state it does nothing.
func (m *AuthMachine) ToggleView() {
	switch m.state {
	case StateLogin:
		m.state = StateSignup
	case StateSignup:
		m.state = StateLogin
	default:
		return
	}
	m.errMsg, m.infoMsg = "", ""
}

// SubmitSignup registers a new identity. Success returns the flow to
// LOGIN with a confirmation message; a duplicate username stays on SIGNUP
// with an error.
func (m *AuthMachine) SubmitSignup(ctx context.Context, username, password string) error {
	m.errMsg, m.infoMsg = "", ""
	if username == "" || password == "" {
		m.errMsg = msgMissingFields
		return nil
	}
	err := m.store.CreateUser(ctx, username, password)
	if errors.Is(err, storage.ErrDuplicateUser) {
		m.errMsg = msgDuplicateUser
		return nil
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	m.state = StateLogin
	m.infoMsg = msgSignupDone
	return nil
}

// SubmitLogin verifies credentials. With autoLogin requested, a user
// without a PIN is routed to PIN_SETUP and one with a PIN is marked for
// auto-login and authenticated; without it the auto-login marker is
// cleared. Invalid credentials surface an error and change nothing.
func (m *AuthMachine) SubmitLogin(ctx context.Context, username, password string, autoLogin bool) error {
	m.errMsg, m.infoMsg = "", ""

	rec, err := m.store.VerifyCredentials(ctx, username, password)
	if errors.Is(err, storage.ErrInvalidCredentials) {
		m.errMsg = msgBadCredentials
		return nil
	}
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}

	if autoLogin {
		if !rec.HasPIN {
			m.state = StatePinSetup
			m.username = username
			return nil
		}
		if err := m.store.SetAutoLoginUser(ctx, username); err != nil {
			return err
		}
	} else {
		if err := m.store.ClearAutoLoginUser(ctx); err != nil {
			return err
		}
	}
	return m.authenticate(ctx, username)
}

// SubmitPINSetup stores the chosen 4-digit PIN, sets the auto-login
// marker and authenticates. An incomplete PIN surfaces an error and stays
// on PIN_SETUP.
func (m *AuthMachine) SubmitPINSetup(ctx context.Context, pin string) error {
	m.errMsg = ""
	if !validPIN(pin) {
		m.errMsg = msgIncompletePIN
		return nil
	}
	if err := m.store.SetPIN(ctx, m.username, pin); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if err := m.store.SetAutoLoginUser(ctx, m.username); err != nil {
		return err
	}
	return m.authenticate(ctx, m.username)
}

// SubmitPINLogin verifies the quick-login PIN for the pre-filled user. A
// mismatch stays on PIN_LOGIN with an error; the presentation layer
// clears its input buffer on seeing it.
func (m *AuthMachine) SubmitPINLogin(ctx context.Context, pin string) error {
	m.errMsg = ""
	_, err := m.store.VerifyPIN(ctx, m.username, pin)
	if errors.Is(err, storage.ErrInvalidCredentials) {
		m.errMsg = msgBadPIN
		return nil
	}
	if err != nil {
		return fmt.Errorf("verify pin: %w", err)
	}
	return m.authenticate(ctx, m.username)
}

// UseAnotherAccount abandons PIN login for the marked user: the auto-login
// marker is cleared and the flow returns to LOGIN.
func (m *AuthMachine) UseAnotherAccount(ctx context.Context) error {
	if m.state != StatePinLogin {
		return nil
	}
	if err := m.store.ClearAutoLoginUser(ctx); err != nil {
		return err
	}
	m.state = StateLogin
	m.username = ""
	m.errMsg, m.infoMsg = "", ""
	return nil
}

// Logout clears the session marker and returns to LOGIN. The auto-login
// marker survives, so the next start lands on PIN_LOGIN again.
func (m *AuthMachine) Logout(ctx context.Context) error {
	if err := m.store.ClearSessionUser(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Logged out",
		log.FieldComponent, log.ComponentAuth,
		log.FieldUsername, m.username)
	m.state = StateLogin
	m.username = ""
	m.errMsg, m.infoMsg = "", ""
	return nil
}

func (m *AuthMachine) authenticate(ctx context.Context, username string) error {
	if err := m.store.SetSessionUser(ctx, username); err != nil {
		return err
	}
	m.state = StateAuthenticated
	m.username = username
	m.errMsg, m.infoMsg = "", ""
	slog.InfoContext(ctx, "Authenticated",
		log.FieldComponent, log.ComponentAuth,
		log.FieldUsername, username,
		log.FieldAuthState, string(m.state))
	return nil
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
