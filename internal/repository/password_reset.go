package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// PasswordResetRepository — одноразовые токены сброса пароля
// (таблица password_resets).
type PasswordResetRepository interface {
	// Create сохраняет токен сброса.
	Create(ctx context.Context, pr *model.PasswordReset) error
	// GetByTokenHash возвращает запись по хэшу токена.
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error)
	// MarkUsed отмечает токен использованным. ErrNotFound, если токен
	// не существует или уже использован.
	MarkUsed(ctx context.Context, id string) error
	// DeleteExpired удаляет просроченные токены, возвращает их количество.
	DeleteExpired(ctx context.Context) (int64, error)
}

// passwordResetRepo — реализация PasswordResetRepository.
type passwordResetRepo struct {
	db DBTX
}

// NewPasswordResetRepository создаёт репозиторий токенов сброса пароля.
func NewPasswordResetRepository(db DBTX) PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) Create(ctx context.Context, pr *model.PasswordReset) error {
	query := `
		INSERT INTO password_resets (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		pr.UserID, pr.TokenHash, pr.ExpiresAt,
	).Scan(&pr.ID, &pr.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания токена сброса: %w", err)
	}
	return nil
}

func (r *passwordResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1`

	pr := &model.PasswordReset{}
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.UsedAt, &pr.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения токена сброса: %w", err)
	}
	return pr, nil
}

func (r *passwordResetRepo) MarkUsed(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE password_resets SET used_at = now() WHERE id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("ошибка отметки токена сброса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *passwordResetRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_resets WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления просроченных токенов: %w", err)
	}
	return tag.RowsAffected(), nil
}
