package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
)

type AccountRepo struct{ db sqlx.ExtContext }

func NewAccountRepo(db sqlx.ExtContext) *AccountRepo { return &AccountRepo{db: db} }

const accountCols = `id, first_name, last_name, email, phone, password_hash, is_admin, balance, avatar, created_at`

func (r *AccountRepo) ByEmail(ctx context.Context, email string) (domain.Account, error) {
	var a domain.Account
	err := sqlx.GetContext(ctx, r.db, &a,
		r.db.Rebind(`SELECT `+accountCols+` FROM accounts WHERE email = ?`), strings.ToLower(email))
	return a, wrap("accounts.by_email", err)
}

func (r *AccountRepo) ByID(ctx context.Context, id string) (domain.Account, error) {
	var a domain.Account
	err := sqlx.GetContext(ctx, r.db, &a,
		r.db.Rebind(`SELECT `+accountCols+` FROM accounts WHERE id = ?`), id)
	return a, wrap("accounts.by_id", err)
}

// Insert stores a new account. A duplicate email surfaces as KindConflict.
func (r *AccountRepo) Insert(ctx context.Context, a domain.Account) error {
	if a.CreatedAt == "" {
		a.CreatedAt = stamp()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO accounts(id, first_name, last_name, email, phone, password_hash, is_admin, balance, avatar, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), a.ID, a.FirstName, a.LastName, strings.ToLower(a.Email), a.Phone, a.Hash, a.IsAdmin, a.Balance, a.Avatar, a.CreatedAt)
	return wrap("accounts.insert", err)
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, "accounts.password", `UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, stamp(), id)
}

func (r *AccountRepo) UpdateAvatar(ctx context.Context, id, avatar string) error {
	return r.update(ctx, "accounts.avatar", `UPDATE accounts SET avatar = ?, updated_at = ? WHERE id = ?`, avatar, stamp(), id)
}

// creditAttempts bounds the read-modify-write loop against concurrent
// balance changes.
const creditAttempts = 3

// Credit adds amount to the wallet balance. The sum is computed with decimal
// in Go; SQLite stores NUMERIC values as REAL and would drift off the cent
// grid if it did the arithmetic.
func (r *AccountRepo) Credit(ctx context.Context, id string, amount decimal.Decimal) error {
	for range creditAttempts {
		a, err := r.ByID(ctx, id)
		if err != nil {
			return err
		}
		ok, err := r.swapBalance(ctx, "accounts.credit", id, a.Balance, a.Balance.Add(amount))
		if err != nil || ok {
			return err
		}
	}
	return &StoreError{Op: "accounts.credit", Kind: KindConflict, Err: errBalanceMoved}
}

// Debit subtracts amount only when the balance covers it; ok is false when
// the balance is short or changed since it was read. Callers run it inside
// the placement transaction.
func (r *AccountRepo) Debit(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	a, err := r.ByID(ctx, id)
	if err != nil {
		return false, wrap("accounts.debit", err)
	}
	if a.Balance.LessThan(amount) {
		return false, nil
	}
	return r.swapBalance(ctx, "accounts.debit", id, a.Balance, a.Balance.Sub(amount))
}

var errBalanceMoved = errors.New("balance changed concurrently")

// swapBalance writes next only if the stored balance still equals prev.
func (r *AccountRepo) swapBalance(ctx context.Context, op, id string, prev, next decimal.Decimal) (bool, error) {
	if next.IsNegative() {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE accounts SET balance = ?, updated_at = ?
		WHERE id = ? AND balance = ?
	`), next.Round(2), stamp(), id, prev)
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap(op, err)
	}
	return n == 1, nil
}

func (r *AccountRepo) CountBuyers(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM accounts WHERE is_admin = FALSE`)
	return n, wrap("accounts.count", err)
}

func (r *AccountRepo) update(ctx context.Context, op, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return wrap(op, err)
	}
	return expectRow(op, res)
}

func newAdmin(email, hash string) domain.Account {
	return domain.Account{
		ID:        uuid.NewString(),
		FirstName: "Admin",
		Email:     email,
		Hash:      hash,
		IsAdmin:   true,
		Balance:   decimal.Zero,
	}
}
