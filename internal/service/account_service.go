package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/repository"
)

// AddressStore is the billing-address surface of the credential store.
type AddressStore interface {
	Create(ctx context.Context, a repository.Address) (uint64, error)
	Delete(ctx context.Context, accountID, addressID uint64) error
	ListByAccount(ctx context.Context, accountID uint64) ([]repository.Address, error)
}

// Profile is the personal data returned to the account owner.
type Profile struct {
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	CreatedAt time.Time        `json:"created_at"`
	Addresses []ProfileAddress `json:"addresses,omitempty"`
}

// ProfileAddress is one billing address of a profile.
type ProfileAddress struct {
	ID         uint64  `json:"id"`
	Salutation string  `json:"salutation"`
	Name       string  `json:"name"`
	Street     string  `json:"street"`
	PostalCode string  `json:"postal_code"`
	City       string  `json:"city"`
	Phone      *string `json:"phone,omitempty"`
}

// AddressInput is a billing address as submitted by the caller.
type AddressInput struct {
	Salutation string `json:"salutation"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
}

var (
	postalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)
	phoneRe      = regexp.MustCompile(`^\+[0-9]{7,15}$`)
)

func validateAddress(in *AddressInput) error {
	if len(in.Salutation) < 4 {
		return apperr.New(apperr.BadRequest, "salutation needs at least 4 characters")
	}
	if len(in.Name) < 5 {
		return apperr.New(apperr.BadRequest, "please provide the full name")
	}
	if len(in.Street) < 2 {
		return apperr.New(apperr.BadRequest, "a street needs at least 2 characters")
	}
	if !postalCodeRe.MatchString(in.PostalCode) {
		return apperr.New(apperr.BadRequest, "invalid postal code")
	}
	if len(in.City) < 2 {
		return apperr.New(apperr.BadRequest, "a city needs at least 2 characters")
	}
	in.Phone = strings.ReplaceAll(in.Phone, " ", "")
	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		return apperr.New(apperr.BadRequest, "invalid phone number (international format required)")
	}
	return nil
}

// AccountService serves personal profile data and billing addresses.
type AccountService struct {
	Auth      *AuthService
	Addresses AddressStore
}

func NewAccountService(auth *AuthService, addresses AddressStore) *AccountService {
	return &AccountService{Auth: auth, Addresses: addresses}
}

// Profile returns the caller's account data including addresses.
func (s *AccountService) Profile(ctx context.Context, token string) (Profile, error) {
	acct, err := s.Auth.resolveActive(ctx, token)
	if err != nil {
		return Profile{}, err
	}
	addrs, err := s.Addresses.ListByAccount(ctx, acct.ID)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{Name: acct.Name, Email: acct.Email, CreatedAt: acct.CreatedAt}
	for _, a := range addrs {
		pa := ProfileAddress{
			ID:         a.ID,
			Salutation: a.Salutation,
			Name:       a.Name,
			Street:     a.Street,
			PostalCode: a.PostalCode,
			City:       a.City,
		}
		if a.Phone.Valid {
			phone := a.Phone.String
			pa.Phone = &phone
		}
		p.Addresses = append(p.Addresses, pa)
	}
	return p, nil
}

// AddAddress validates and stores a new billing address.
func (s *AccountService) AddAddress(ctx context.Context, token string, in AddressInput) (uint64, error) {
	if err := validateAddress(&in); err != nil {
		return 0, err
	}
	acct, err := s.Auth.resolveActive(ctx, token)
	if err != nil {
		return 0, err
	}
	addr := repository.Address{
		AccountID:  acct.ID,
		Salutation: in.Salutation,
		Name:       in.Name,
		Street:     in.Street,
		PostalCode: in.PostalCode,
		City:       in.City,
	}
	if in.Phone != "" {
		addr.Phone = sql.NullString{String: in.Phone, Valid: true}
	}
	return s.Addresses.Create(ctx, addr)
}

// DeleteAddress removes one of the caller's addresses.
func (s *AccountService) DeleteAddress(ctx context.Context, token string, addressID uint64) error {
	acct, err := s.Auth.resolveActive(ctx, token)
	if err != nil {
		return err
	}
	if err := s.Addresses.Delete(ctx, acct.ID, addressID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.BadRequest, "no address with this id")
		}
		return err
	}
	return nil
}
