package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// UserModuleRepository — доступы пользователей к модулям (таблица user_modules).
type UserModuleRepository interface {
	// Upsert создаёт или обновляет флаг доступа пользователя к модулю.
	Upsert(ctx context.Context, um *model.UserModule) error
	// Get возвращает запись доступа. ErrNotFound, если записи нет.
	Get(ctx context.Context, userID string, moduleID int) (*model.UserModule, error)
	// ListByUser возвращает все записи доступа пользователя.
	ListByUser(ctx context.Context, userID string) ([]*model.UserModule, error)
	// EnabledSet возвращает множество ID модулей, включённых пользователю.
	EnabledSet(ctx context.Context, userID string) (map[int]bool, error)
}

// userModuleRepo — реализация UserModuleRepository.
type userModuleRepo struct {
	db DBTX
}

// NewUserModuleRepository создаёт репозиторий доступов к модулям.
func NewUserModuleRepository(db DBTX) UserModuleRepository {
	return &userModuleRepo{db: db}
}

func (r *userModuleRepo) Upsert(ctx context.Context, um *model.UserModule) error {
	query := `
		INSERT INTO user_modules (user_id, module_id, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, module_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			updated_at = now()
		RETURNING id, updated_at`

	err := r.db.QueryRow(ctx, query,
		um.UserID, um.ModuleID, um.Enabled,
	).Scan(&um.ID, &um.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка upsert доступа к модулю: %w", err)
	}
	return nil
}

func (r *userModuleRepo) Get(ctx context.Context, userID string, moduleID int) (*model.UserModule, error) {
	query := `
		SELECT id, user_id, module_id, enabled, updated_at
		FROM user_modules
		WHERE user_id = $1 AND module_id = $2`

	um := &model.UserModule{}
	err := r.db.QueryRow(ctx, query, userID, moduleID).Scan(
		&um.ID, &um.UserID, &um.ModuleID, &um.Enabled, &um.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения доступа к модулю: %w", err)
	}
	return um, nil
}

func (r *userModuleRepo) ListByUser(ctx context.Context, userID string) ([]*model.UserModule, error) {
	query := `
		SELECT id, user_id, module_id, enabled, updated_at
		FROM user_modules
		WHERE user_id = $1
		ORDER BY module_id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения доступов пользователя: %w", err)
	}
	defer rows.Close()

	var result []*model.UserModule
	for rows.Next() {
		um := &model.UserModule{}
		if err := rows.Scan(&um.ID, &um.UserID, &um.ModuleID, &um.Enabled, &um.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования доступа к модулю: %w", err)
		}
		result = append(result, um)
	}
	return result, rows.Err()
}

func (r *userModuleRepo) EnabledSet(ctx context.Context, userID string) (map[int]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT module_id FROM user_modules WHERE user_id = $1 AND enabled`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения включённых модулей: %w", err)
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования module_id: %w", err)
		}
		set[id] = true
	}
	return set, rows.Err()
}
