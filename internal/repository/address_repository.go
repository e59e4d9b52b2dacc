package repository

import (
	"context"
	"database/sql"
	"time"
)

// Address mirrors the 'addresses' table (billing addresses owned by an
// account).
type Address struct {
	ID         uint64
	AccountID  uint64
	Salutation string
	Name       string
	Street     string
	PostalCode string
	City       string
	Phone      sql.NullString
	CreatedAt  time.Time
}

type AddressRepo struct{ DB *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{DB: db} }

// Create inserts an address and returns its ID.
func (r *AddressRepo) Create(ctx context.Context, a Address) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO addresses (account_id, salutation, name, street, postal_code, city, phone)
		 VALUES (?,?,?,?,?,?,?)`,
		a.AccountID, a.Salutation, a.Name, a.Street, a.PostalCode, a.City, a.Phone)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// Delete removes an address scoped to its owning account. Returns
// sql.ErrNoRows when the address does not exist or belongs to someone
// else.
func (r *AddressRepo) Delete(ctx context.Context, accountID, addressID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM addresses WHERE id=? AND account_id=?", addressID, accountID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByAccount returns all addresses of an account, oldest first.
func (r *AddressRepo) ListByAccount(ctx context.Context, accountID uint64) ([]Address, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, account_id, salutation, name, street, postal_code, city, phone, created_at
		 FROM addresses WHERE account_id=? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Salutation, &a.Name,
			&a.Street, &a.PostalCode, &a.City, &a.Phone, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
