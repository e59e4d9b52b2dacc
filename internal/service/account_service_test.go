package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/repository"
)

type stubAddresses struct {
	nextID uint64
	byID   map[uint64]repository.Address
}

func newStubAddresses() *stubAddresses {
	return &stubAddresses{byID: make(map[uint64]repository.Address)}
}

func (s *stubAddresses) Create(_ context.Context, a repository.Address) (uint64, error) {
	s.nextID++
	a.ID = s.nextID
	s.byID[a.ID] = a
	return a.ID, nil
}

func (s *stubAddresses) Delete(_ context.Context, accountID, addressID uint64) error {
	a, ok := s.byID[addressID]
	if !ok || a.AccountID != accountID {
		return sql.ErrNoRows
	}
	delete(s.byID, addressID)
	return nil
}

func (s *stubAddresses) ListByAccount(_ context.Context, accountID uint64) ([]repository.Address, error) {
	var out []repository.Address
	for _, a := range s.byID {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestAccount(t *testing.T) (*AccountService, string) {
	t.Helper()
	accounts := newStubAccounts()
	auth := NewAuthService(accounts, &recorderMailer{}, bcrypt.MinCost, "http://cinema.test")
	token := registerActive(t, auth, "ada@mail.test", "secret-pass", "Ada Lovelace")
	return NewAccountService(auth, newStubAddresses()), token
}

func validInput() AddressInput {
	return AddressInput{
		Salutation: "Frau",
		Name:       "Ada Lovelace",
		Street:     "Hauptstraße 12",
		PostalCode: "70173",
		City:       "Stuttgart",
		Phone:      "+49 711 1234567",
	}
}

func TestAddressValidation(t *testing.T) {
	svc, token := newTestAccount(t)
	ctx := context.Background()

	mutate := []struct {
		name string
		mod  func(*AddressInput)
	}{
		{"salutation too short", func(a *AddressInput) { a.Salutation = "Hr" }},
		{"name too short", func(a *AddressInput) { a.Name = "Ada" }},
		{"street too short", func(a *AddressInput) { a.Street = "H" }},
		{"postal code not 5 digits", func(a *AddressInput) { a.PostalCode = "7017" }},
		{"postal code with letters", func(a *AddressInput) { a.PostalCode = "7017A" }},
		{"city too short", func(a *AddressInput) { a.City = "S" }},
		{"phone without plus", func(a *AddressInput) { a.Phone = "0711123456" }},
		{"phone too short", func(a *AddressInput) { a.Phone = "+49123" }},
	}
	for _, tc := range mutate {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mod(&in)
			_, err := svc.AddAddress(ctx, token, in)
			assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
		})
	}
}

func TestAddressLifecycle(t *testing.T) {
	svc, token := newTestAccount(t)
	ctx := context.Background()

	id, err := svc.AddAddress(ctx, token, validInput())
	require.NoError(t, err)

	// A phone with spaces is normalized before storage.
	p, err := svc.Profile(ctx, token)
	require.NoError(t, err)
	require.Len(t, p.Addresses, 1)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, "ada@mail.test", p.Email)
	require.NotNil(t, p.Addresses[0].Phone)
	assert.Equal(t, "+497111234567", *p.Addresses[0].Phone)

	// Empty phone stays empty.
	in := validInput()
	in.Phone = ""
	_, err = svc.AddAddress(ctx, token, in)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress(ctx, token, id))

	err = svc.DeleteAddress(ctx, token, id)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestAddressScopedToOwner(t *testing.T) {
	svc, token := newTestAccount(t)
	ctx := context.Background()

	id, err := svc.AddAddress(ctx, token, validInput())
	require.NoError(t, err)

	other := registerActive(t, svc.Auth, "grace@mail.test", "secret-pass", "Grace Hopper")
	err = svc.DeleteAddress(ctx, other, id)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}
