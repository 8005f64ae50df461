package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// AssigneeMapRepository — карта соответствия имён сотрудников
// идентификаторам ClickUp (таблица assignee_map).
type AssigneeMapRepository interface {
	// Upsert создаёт или обновляет соответствие по имени.
	Upsert(ctx context.Context, a *model.Assignee) error
	// GetByName возвращает соответствие по имени (без учёта регистра).
	GetByName(ctx context.Context, name string) (*model.Assignee, error)
	// List возвращает все соответствия, отсортированные по имени.
	List(ctx context.Context) ([]*model.Assignee, error)
	// Delete удаляет соответствие по UUID.
	Delete(ctx context.Context, id string) error
}

// assigneeMapRepo — реализация AssigneeMapRepository.
type assigneeMapRepo struct {
	db DBTX
}

// NewAssigneeMapRepository создаёт репозиторий карты ответственных.
func NewAssigneeMapRepository(db DBTX) AssigneeMapRepository {
	return &assigneeMapRepo{db: db}
}

const assigneeColumns = `id, name, clickup_user_id, created_at, updated_at`

func (r *assigneeMapRepo) Upsert(ctx context.Context, a *model.Assignee) error {
	// Имя нормализуется к нижнему регистру: поиск идёт по имени
	// из произвольно набранного текста диалога
	query := `
		INSERT INTO assignee_map (name, clickup_user_id)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			clickup_user_id = EXCLUDED.clickup_user_id,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(a.Name)), a.ClickUpUserID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка upsert ответственного: %w", err)
	}
	return nil
}

func (r *assigneeMapRepo) GetByName(ctx context.Context, name string) (*model.Assignee, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignee_map WHERE name = $1`, assigneeColumns)

	a := &model.Assignee{}
	err := r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(name))).Scan(
		&a.ID, &a.Name, &a.ClickUpUserID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения ответственного: %w", err)
	}
	return a, nil
}

func (r *assigneeMapRepo) List(ctx context.Context) ([]*model.Assignee, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignee_map ORDER BY name`, assigneeColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка ответственных: %w", err)
	}
	defer rows.Close()

	var result []*model.Assignee
	for rows.Next() {
		a := &model.Assignee{}
		if err := rows.Scan(&a.ID, &a.Name, &a.ClickUpUserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования ответственного: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *assigneeMapRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assignee_map WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления ответственного: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
