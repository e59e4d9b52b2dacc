package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/mail"
	"github.com/capitolcinema/booking-backend/internal/repository"
	"github.com/capitolcinema/booking-backend/internal/utils"
)

// EmailChangeStore is the pending-request surface of the credential
// store.
type EmailChangeStore interface {
	Replace(ctx context.Context, accountID uint64, newEmail string, oldKey, newKey int) error
	GetByAccount(ctx context.Context, accountID uint64) (repository.EmailChangeRequest, error)
	Apply(ctx context.Context, accountID uint64, newEmail string) error
}

// EmailChangeService runs the two-key email change protocol. The change
// only takes effect after the caller proves control of both the old and
// the new mailbox, which blocks account takeover through a single
// compromised inbox.
type EmailChangeService struct {
	Auth     *AuthService
	Requests EmailChangeStore
	Mail     mail.Mailer
}

func NewEmailChangeService(auth *AuthService, requests EmailChangeStore, m mail.Mailer) *EmailChangeService {
	return &EmailChangeService{Auth: auth, Requests: requests, Mail: m}
}

// Request opens (or replaces) a pending email change. The caller must
// present both a valid token and the account password; a mismatch of
// either fails Unauthorized without revealing which part was wrong. Two
// independent 5-digit keys are generated and mailed separately to the
// old and the new address.
func (s *EmailChangeService) Request(ctx context.Context, token, password, newEmail string) error {
	if !validEmail(newEmail) {
		return apperr.New(apperr.BadRequest, "invalid new email address")
	}
	acct, err := s.Auth.resolveActive(ctx, token)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(acct.PasswordHash, password) {
		return apperr.New(apperr.Unauthorized, "token or password wrong")
	}

	oldKey, err := utils.FiveDigitKey()
	if err != nil {
		return err
	}
	newKey, err := utils.FiveDigitKey()
	if err != nil {
		return err
	}
	if err := s.Requests.Replace(ctx, acct.ID, newEmail, oldKey, newKey); err != nil {
		return err
	}
	mail.SendEmailChange(s.Mail, acct.Name, acct.Email, newEmail, oldKey, newKey)
	return nil
}

// Confirm completes a pending change. Both keys are checked
// independently with distinct error messages; only a full match
// rewrites the account email and removes the request. A repeated
// Confirm afterwards fails Unauthorized because no request is pending
// anymore.
func (s *EmailChangeService) Confirm(ctx context.Context, token string, oldKey, newKey int) error {
	acct, err := s.Auth.resolveActive(ctx, token)
	if err != nil {
		return err
	}
	req, err := s.Requests.GetByAccount(ctx, acct.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.Unauthorized, "no pending email change for this account")
		}
		return err
	}
	if newKey != req.NewEmailKey {
		return apperr.New(apperr.Conflict, "key for the new email address is wrong")
	}
	if oldKey != req.OldEmailKey {
		return apperr.New(apperr.Conflict, "key for the old email address is wrong")
	}
	if err := s.Requests.Apply(ctx, acct.ID, req.NewEmail); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.New(apperr.Conflict, "another account already uses this email address")
		}
		return err
	}
	return nil
}
