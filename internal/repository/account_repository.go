package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// AccountState mirrors the 'state' column: 0 pending, 1 active,
// 2 deactivated.
type AccountState uint8

const (
	StatePending     AccountState = 0
	StateActive      AccountState = 1
	StateDeactivated AccountState = 2
)

// Account mirrors the 'accounts' table.
type Account struct {
	ID           uint64
	Role         int
	State        AccountState
	PasswordHash string
	Email        string
	Name         string
	CreatedAt    time.Time
}

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// CreateWithActivationKey inserts a pending account together with its
// single-use activation key in one transaction and returns the account
// ID.
func (r *AccountRepo) CreateWithActivationKey(ctx context.Context, email, passwordHash, name, key string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (password_hash, email, name) VALUES (?,?,?)",
		passwordHash, email, name)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO activation_keys (account_id, activation_key) VALUES (?,?)",
		id, key); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Activate flips the account bound to key to active and consumes the
// key. Returns sql.ErrNoRows when the key does not exist (or was
// already consumed); update and delete share one transaction.
func (r *AccountRepo) Activate(ctx context.Context, key string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET state=? WHERE id=
		   (SELECT account_id FROM activation_keys WHERE activation_key=?)`,
		StateActive, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM activation_keys WHERE activation_key=?", key); err != nil {
		return err
	}
	return tx.Commit()
}

const accountCols = "id, role, state, password_hash, email, name, created_at"

func scanAccount(row *sql.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Role, &a.State, &a.PasswordHash, &a.Email, &a.Name, &a.CreatedAt)
	return a, err
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE email=? LIMIT 1", email))
}

// ResolveToken fetches the account bound to an auth-token hash.
func (r *AccountRepo) ResolveToken(ctx context.Context, tokenHash string) (Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=
		   (SELECT account_id FROM auth_tokens WHERE token_hash=?) LIMIT 1`,
		tokenHash))
}

// StoreToken persists a freshly minted auth-token hash. Multiple tokens
// may coexist per account.
func (r *AccountRepo) StoreToken(ctx context.Context, accountID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_tokens (account_id, token_hash) VALUES (?,?)",
		accountID, tokenHash)
	return err
}

// SetState updates the activation state of an account.
func (r *AccountRepo) SetState(ctx context.Context, accountID uint64, state AccountState) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET state=? WHERE id=?", state, accountID)
	return err
}

// UpdateProfile rewrites the provided optional fields. Nil pointers are
// left untouched; at least one field must be non-nil.
func (r *AccountRepo) UpdateProfile(ctx context.Context, accountID uint64, email, name, passwordHash *string) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*email)))
	}
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if passwordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *passwordHash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, accountID)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}
