package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Admin struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	CreatedAt time.Time `db:"created_at"`
}

type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{
		db: db,
	}
}

// ChatIDs is read fresh on every fan-out, so admins added at runtime receive
// subsequent approval prompts.
func (r *AdminRepository) ChatIDs(ctx context.Context) ([]int64, error) {
	var chatIDs []int64

	err := r.db.SelectContext(ctx, &chatIDs, `
	    SELECT chat_id FROM admins
		ORDER BY id
	`)

	if err != nil {
		return nil, fmt.Errorf("AdminRepository.ChatIDs: %w", err)
	}

	return chatIDs, nil
}

func (r *AdminRepository) Create(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `
	    INSERT INTO admins (chat_id) VALUES ($1)
		ON CONFLICT (chat_id) DO NOTHING
	`, chatID)

	if err != nil {
		return fmt.Errorf("AdminRepository.Create: %w", err)
	}

	return nil
}

// Seed registers the configured admin chat ids at startup.
func (r *AdminRepository) Seed(ctx context.Context, chatIDs []int64) error {
	for _, chatID := range chatIDs {
		if err := r.Create(ctx, chatID); err != nil {
			return fmt.Errorf("AdminRepository.Seed: %w", err)
		}
	}

	return nil
}
