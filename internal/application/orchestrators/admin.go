package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"arisan/internal/application/state"
	"arisan/internal/domain/ledger"
	"arisan/internal/security"
)

// Admin errors.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrPasswordTooWeak = errors.New("password must be at least 4 characters")
	ErrInvalidEmail    = errors.New("invalid email address")
)

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Password string
}

// LoginDeps holds dependencies for ExecuteLogin.
type LoginDeps struct {
	State *state.Container
}

// ExecuteLogin checks the shared admin password.
// PRE: none
// POST: Returns nil on a match; session issuance is the caller's job
func ExecuteLogin(_ context.Context, input LoginInput, deps LoginDeps) error {
	stored := security.Deobfuscate(deps.State.Current().AdminPassword)
	if !security.SecureCompare(input.Password, stored) {
		slog.Warn("admin_login_failed")
		return ErrInvalidPassword
	}
	slog.Info("admin_login")
	return nil
}

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ExecuteChangePassword rotates the shared admin password.
// PRE: CurrentPassword matches the stored credential
// POST: The stored credential is the obfuscated new password
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps MutationDeps) error {
	if len(input.NewPassword) < 4 {
		return ErrPasswordTooWeak
	}
	_, err := applyMutation(ctx, deps, "password_changed", func(st ledger.State) (ledger.State, error) {
		stored := security.Deobfuscate(st.AdminPassword)
		if !security.SecureCompare(input.CurrentPassword, stored) {
			return ledger.State{}, ErrInvalidPassword
		}
		st.AdminPassword = security.Obfuscate(input.NewPassword)
		return st, nil
	})
	return err
}

// SetAdminEmailInput carries input for the set-admin-email orchestrator.
type SetAdminEmailInput struct {
	Email string
}

// ExecuteSetAdminEmail changes the treasurer's notification address.
// PRE: Email parses as an address
// POST: AdminEmail updated
func ExecuteSetAdminEmail(ctx context.Context, input SetAdminEmailInput, deps MutationDeps) (ledger.State, error) {
	addr := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(addr); err != nil {
		return ledger.State{}, ErrInvalidEmail
	}
	return applyMutation(ctx, deps, "admin_email_changed", func(st ledger.State) (ledger.State, error) {
		st.AdminEmail = addr
		return st, nil
	})
}

// SetDarkModeInput carries input for the dark-mode toggle.
type SetDarkModeInput struct {
	DarkMode bool
}

// ExecuteSetDarkMode stores the shared display preference.
// POST: DarkMode updated
func ExecuteSetDarkMode(ctx context.Context, input SetDarkModeInput, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "dark_mode_set", func(st ledger.State) (ledger.State, error) {
		st.DarkMode = input.DarkMode
		return st, nil
	})
}

// ExecuteReset wipes the ledger back to defaults.
// PRE: caller is an authenticated admin
// POST: Members, transactions and week tracking reset; gallery,
// schedule, credential and settings survive
func ExecuteReset(ctx context.Context, deps MutationDeps) (ledger.State, error) {
	return applyMutation(ctx, deps, "ledger_reset", func(st ledger.State) (ledger.State, error) {
		return st.Reset(), nil
	})
}
