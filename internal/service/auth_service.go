// Package service implements the business operations of the booking
// backend. Each service depends on narrow store interfaces satisfied by
// the repository package, so tests can exercise the operations against
// stubs. Privileged operations call the authorization barrier
// themselves as their first step.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/mail"
	"github.com/capitolcinema/booking-backend/internal/repository"
	"github.com/capitolcinema/booking-backend/internal/utils"
)

// AdminRoleLevel is the minimum role for administrative operations
// (creating showings, uploading room plans).
const AdminRoleLevel = 700

// AccountStore is the credential-store surface the auth operations
// need.
type AccountStore interface {
	CreateWithActivationKey(ctx context.Context, email, passwordHash, name, key string) (uint64, error)
	Activate(ctx context.Context, key string) error
	GetByEmail(ctx context.Context, email string) (repository.Account, error)
	ResolveToken(ctx context.Context, tokenHash string) (repository.Account, error)
	StoreToken(ctx context.Context, accountID uint64, tokenHash string) error
	SetState(ctx context.Context, accountID uint64, state repository.AccountState) error
	UpdateProfile(ctx context.Context, accountID uint64, email, name, passwordHash *string) error
}

// AccountSummary is what the authorization barrier hands to a
// privileged operation: just enough to act on behalf of the caller.
type AccountSummary struct {
	ID   uint64
	Role int
}

// AuthService implements the credential lifecycle and the
// authorization barrier.
type AuthService struct {
	Accounts   AccountStore
	Mail       mail.Mailer
	BcryptCost int
	// PublicBaseURL is the externally reachable address used in
	// activation links.
	PublicBaseURL string
}

func NewAuthService(accounts AccountStore, m mail.Mailer, bcryptCost int, baseURL string) *AuthService {
	return &AuthService{Accounts: accounts, Mail: m, BcryptCost: bcryptCost, PublicBaseURL: baseURL}
}

// validEmail checks for a non-empty local part, an '@' and a non-empty
// domain part.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// notActiveError distinguishes "never activated" from "deactivated".
func notActiveError(state repository.AccountState) error {
	if state == repository.StatePending {
		return apperr.New(apperr.NotActive, "account not yet activated")
	}
	return apperr.New(apperr.NotActive, "account deactivated")
}

// Register validates the input, creates a pending account with a
// single-use activation key and mails the activation link. The key is
// also returned so callers can hand it out through another channel.
func (s *AuthService) Register(ctx context.Context, password, email, name string) (string, error) {
	if len(password) <= 8 {
		return "", apperr.New(apperr.BadRequest, "password must be longer than 8 characters")
	}
	if !validEmail(email) {
		return "", apperr.New(apperr.BadRequest, "invalid email address")
	}
	if len(name) <= 5 {
		return "", apperr.New(apperr.BadRequest, "please provide your full name (first and last name)")
	}

	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return "", err
	}
	key := utils.NewKey()
	if _, err := s.Accounts.CreateWithActivationKey(ctx, email, hash, name, key); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", apperr.New(apperr.Conflict, "an account with this email address already exists")
		}
		return "", err
	}
	mail.SendActivation(s.Mail, name, email, s.PublicBaseURL, key)
	return key, nil
}

// Activate consumes an activation key and flips the bound account to
// active. A second call with the same key fails NotFound: the key was
// deleted on first use, which is the correct terminal signal.
func (s *AuthService) Activate(ctx context.Context, key string) error {
	if len(key) != utils.KeyLength {
		return apperr.New(apperr.BadRequest, "invalid activation key format")
	}
	if err := s.Accounts.Activate(ctx, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "invalid activation key")
		}
		return err
	}
	return nil
}

// Login verifies email and password, mints a fresh auth token and
// returns it together with the account's display name. Existing tokens
// stay valid; multiple concurrent sessions are allowed.
func (s *AuthService) Login(ctx context.Context, email, password string) (token, name string, err error) {
	acct, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", apperr.New(apperr.Unauthorized, "email/password combination is wrong")
		}
		return "", "", err
	}
	if !utils.VerifyPassword(acct.PasswordHash, password) {
		return "", "", apperr.New(apperr.Unauthorized, "email/password combination is wrong")
	}
	if acct.State != repository.StateActive {
		return "", "", notActiveError(acct.State)
	}

	raw := utils.NewKey()
	if err := s.Accounts.StoreToken(ctx, acct.ID, utils.HashToken(raw)); err != nil {
		return "", "", err
	}
	return raw, acct.Name, nil
}

// Deactivate sets the account to deactivated after re-verifying the
// password. Token and password are checked together and a mismatch of
// either fails with the same NotFound, without leaking which part was
// wrong. Existing auth tokens are not revoked; the barrier rejects them
// from now on.
func (s *AuthService) Deactivate(ctx context.Context, token, password string) error {
	acct, err := s.Accounts.ResolveToken(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "token or password wrong")
		}
		return err
	}
	if !utils.VerifyPassword(acct.PasswordHash, password) {
		return apperr.New(apperr.NotFound, "token or password wrong")
	}
	return s.Accounts.SetState(ctx, acct.ID, repository.StateDeactivated)
}

// resolveActive resolves a token to its account and enforces the
// activation state. Shared by the barrier and by every operation that
// acts on the caller's own account.
func (s *AuthService) resolveActive(ctx context.Context, token string) (repository.Account, error) {
	if len(token) != utils.KeyLength {
		return repository.Account{}, apperr.New(apperr.BadRequest,
			"invalid auth token (a valid token has %d characters)", utils.KeyLength)
	}
	acct, err := s.Accounts.ResolveToken(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.Account{}, apperr.New(apperr.Unauthorized, "no account found for these credentials")
		}
		return repository.Account{}, err
	}
	if acct.State != repository.StateActive {
		return repository.Account{}, notActiveError(acct.State)
	}
	return acct, nil
}

// Authorize is the authorization barrier: it resolves the token,
// enforces the activation state and requires the account's role level
// to meet minRole. Read-only; every privileged operation calls it
// first.
func (s *AuthService) Authorize(ctx context.Context, token string, minRole int) (AccountSummary, error) {
	acct, err := s.resolveActive(ctx, token)
	if err != nil {
		return AccountSummary{}, err
	}
	if acct.Role < minRole {
		return AccountSummary{}, apperr.New(apperr.Unauthorized,
			"insufficient privileges: level %d required, you have %d", minRole, acct.Role)
	}
	return AccountSummary{ID: acct.ID, Role: acct.Role}, nil
}

// UpdateProfile rewrites any subset of email, name and password after
// validating each supplied field like Register does.
func (s *AuthService) UpdateProfile(ctx context.Context, token string, email, name, password *string) error {
	if email == nil && name == nil && password == nil {
		return apperr.New(apperr.BadRequest, "nothing to update: provide email, name and/or password")
	}
	if email != nil && !validEmail(*email) {
		return apperr.New(apperr.BadRequest, "invalid email address")
	}
	if name != nil && len(*name) <= 5 {
		return apperr.New(apperr.BadRequest, "please provide your full name (first and last name)")
	}
	if password != nil && len(*password) <= 8 {
		return apperr.New(apperr.BadRequest, "password must be longer than 8 characters")
	}

	acct, err := s.resolveActive(ctx, token)
	if err != nil {
		return err
	}
	var passwordHash *string
	if password != nil {
		h, err := utils.HashPassword(*password, s.BcryptCost)
		if err != nil {
			return err
		}
		passwordHash = &h
	}
	if err := s.Accounts.UpdateProfile(ctx, acct.ID, email, name, passwordHash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.New(apperr.Conflict, "another account already uses this email address")
		}
		return err
	}
	return nil
}
