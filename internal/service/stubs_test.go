package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/capitolcinema/booking-backend/internal/repository"
)

// stubAccounts is an in-memory AccountStore mirroring the uniqueness
// and consume-on-use behavior of the real repository.
type stubAccounts struct {
	nextID   uint64
	accounts map[uint64]*repository.Account
	emails   map[string]uint64
	keys     map[string]uint64 // activation key -> account id
	tokens   map[string]uint64 // token hash -> account id
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{
		accounts: make(map[uint64]*repository.Account),
		emails:   make(map[string]uint64),
		keys:     make(map[string]uint64),
		tokens:   make(map[string]uint64),
	}
}

func (s *stubAccounts) CreateWithActivationKey(_ context.Context, email, passwordHash, name, key string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, dup := s.emails[email]; dup {
		return 0, repository.ErrEmailExists
	}
	s.nextID++
	id := s.nextID
	s.accounts[id] = &repository.Account{
		ID: id, Role: 1, State: repository.StatePending,
		PasswordHash: passwordHash, Email: email, Name: name,
		CreatedAt: time.Now(),
	}
	s.emails[email] = id
	s.keys[key] = id
	return id, nil
}

func (s *stubAccounts) Activate(_ context.Context, key string) error {
	id, ok := s.keys[key]
	if !ok {
		return sql.ErrNoRows
	}
	s.accounts[id].State = repository.StateActive
	delete(s.keys, key)
	return nil
}

func (s *stubAccounts) GetByEmail(_ context.Context, email string) (repository.Account, error) {
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return repository.Account{}, sql.ErrNoRows
	}
	return *s.accounts[id], nil
}

func (s *stubAccounts) ResolveToken(_ context.Context, tokenHash string) (repository.Account, error) {
	id, ok := s.tokens[tokenHash]
	if !ok {
		return repository.Account{}, sql.ErrNoRows
	}
	return *s.accounts[id], nil
}

func (s *stubAccounts) StoreToken(_ context.Context, accountID uint64, tokenHash string) error {
	s.tokens[tokenHash] = accountID
	return nil
}

func (s *stubAccounts) SetState(_ context.Context, accountID uint64, state repository.AccountState) error {
	acct, ok := s.accounts[accountID]
	if !ok {
		return sql.ErrNoRows
	}
	acct.State = state
	return nil
}

func (s *stubAccounts) UpdateProfile(_ context.Context, accountID uint64, email, name, passwordHash *string) error {
	acct, ok := s.accounts[accountID]
	if !ok {
		return sql.ErrNoRows
	}
	if email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*email))
		if other, dup := s.emails[normalized]; dup && other != accountID {
			return repository.ErrEmailExists
		}
		delete(s.emails, acct.Email)
		acct.Email = normalized
		s.emails[normalized] = accountID
	}
	if name != nil {
		acct.Name = *name
	}
	if passwordHash != nil {
		acct.PasswordHash = *passwordHash
	}
	return nil
}

// setRole tweaks an account directly, bypassing the public operations.
func (s *stubAccounts) setRole(id uint64, role int) { s.accounts[id].Role = role }

// sentMail records one outbound message.
type sentMail struct {
	ToName, ToAddress, Subject, HTMLBody string
}

// recorderMailer collects outbound mail instead of queueing it.
type recorderMailer struct {
	sent []sentMail
}

func (m *recorderMailer) Send(toName, toAddress, subject, htmlBody string) {
	m.sent = append(m.sent, sentMail{toName, toAddress, subject, htmlBody})
}
