package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateIdentity = errors.New("account already exists for this telegram user")
	ErrDuplicateNickname = errors.New("nickname already taken")
)

// Account is one whitelist entry. telegram_user_id and nickname are both
// unique; verified only ever goes false -> true, an unverified account may
// instead be deleted by a rejection.
type Account struct {
	ID             int64     `db:"id"`
	TelegramUserID int64     `db:"telegram_user_id"`
	Nickname       string    `db:"nickname"`
	DisplayName    *string   `db:"display_name"`
	Verified       bool      `db:"verified"`
	CreatedAt      time.Time `db:"created_at"`
}

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

func (r *AccountRepository) GetByTelegramUserID(ctx context.Context, telegramUserID int64) (*Account, error) {
	var account Account

	err := r.db.GetContext(ctx, &account, `
	    SELECT * FROM accounts
		WHERE telegram_user_id = $1
	`, telegramUserID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("AccountRepository.GetByTelegramUserID: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *Account) error {
	_, err := r.db.ExecContext(ctx, `
	    INSERT INTO accounts (telegram_user_id, nickname, display_name)
		VALUES ($1, $2, $3)
	`,
		account.TelegramUserID,
		account.Nickname,
		account.DisplayName,
	)

	if err != nil {
		if dup := mapUniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("AccountRepository.Create: %w", err)
	}

	return nil
}

// SetVerified flips verified to true for an unverified account. The WHERE
// clause makes the check-then-set a single atomic statement, so of two racing
// approvals exactly one observes a change.
func (r *AccountRepository) SetVerified(ctx context.Context, telegramUserID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	    UPDATE accounts SET verified = TRUE
		WHERE telegram_user_id = $1 AND verified = FALSE
	`, telegramUserID)

	if err != nil {
		return false, fmt.Errorf("AccountRepository.SetVerified: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("AccountRepository.SetVerified: %w", err)
	}

	return affected > 0, nil
}

// Delete removes an unverified account. Verified accounts never match the
// WHERE clause, so a rejection can never undo an approval.
func (r *AccountRepository) Delete(ctx context.Context, telegramUserID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	    DELETE FROM accounts
		WHERE telegram_user_id = $1 AND verified = FALSE
	`, telegramUserID)

	if err != nil {
		return false, fmt.Errorf("AccountRepository.Delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("AccountRepository.Delete: %w", err)
	}

	return affected > 0, nil
}

// mapUniqueViolation translates a postgres unique violation into the
// taxonomy error for the constraint that fired, or nil for anything else.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}

	switch pqErr.Constraint {
	case "accounts_nickname_key":
		return ErrDuplicateNickname
	case "accounts_telegram_user_id_key":
		return ErrDuplicateIdentity
	}

	return nil
}
