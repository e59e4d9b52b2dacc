package repository

import (
	"context"
	"database/sql"
	"time"
)

// EmailChangeRequest mirrors the 'email_change_requests' table. At most
// one row exists per account (unique key on account_id).
type EmailChangeRequest struct {
	AccountID   uint64
	NewEmail    string
	OldEmailKey int
	NewEmailKey int
	CreatedAt   time.Time
}

type EmailChangeRepo struct{ DB *sql.DB }

func NewEmailChangeRepo(db *sql.DB) *EmailChangeRepo { return &EmailChangeRepo{DB: db} }

// Replace deletes any prior pending request of the account and inserts
// the new one; delete and insert share one transaction so a concurrent
// reader sees either the old request or the new one, never both or
// neither.
func (r *EmailChangeRepo) Replace(ctx context.Context, accountID uint64, newEmail string, oldKey, newKey int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM email_change_requests WHERE account_id=?", accountID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO email_change_requests (account_id, new_email, old_email_key, new_email_key)
		 VALUES (?,?,?,?)`,
		accountID, newEmail, oldKey, newKey); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByAccount fetches the pending request of an account.
func (r *EmailChangeRepo) GetByAccount(ctx context.Context, accountID uint64) (EmailChangeRequest, error) {
	var req EmailChangeRequest
	err := r.DB.QueryRowContext(ctx,
		`SELECT account_id, new_email, old_email_key, new_email_key, created_at
		 FROM email_change_requests WHERE account_id=? LIMIT 1`, accountID).
		Scan(&req.AccountID, &req.NewEmail, &req.OldEmailKey, &req.NewEmailKey, &req.CreatedAt)
	return req, err
}

// Apply overwrites the account's email and deletes the pending request
// in one transaction.
func (r *EmailChangeRepo) Apply(ctx context.Context, accountID uint64, newEmail string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET email=? WHERE id=?", newEmail, accountID); err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM email_change_requests WHERE account_id=?", accountID); err != nil {
		return err
	}
	return tx.Commit()
}
