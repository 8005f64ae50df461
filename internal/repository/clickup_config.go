package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowcenter/flowcenter/internal/domain/model"
)

// ClickUpConfigRepository — конфигурация ClickUp (таблица clickup_config).
type ClickUpConfigRepository interface {
	// Get возвращает действующую конфигурацию. ErrNotFound, если её нет.
	Get(ctx context.Context) (*model.ClickUpConfig, error)
	// Replace заменяет конфигурацию: удаляет существующие записи
	// и вставляет новую. Обе операции — в пределах переданной db
	// (при вызове внутри транзакции замена атомарна).
	Replace(ctx context.Context, cfg *model.ClickUpConfig) error
}

// clickupConfigRepo — реализация ClickUpConfigRepository.
type clickupConfigRepo struct {
	db DBTX
}

// NewClickUpConfigRepository создаёт репозиторий конфигурации ClickUp.
func NewClickUpConfigRepository(db DBTX) ClickUpConfigRepository {
	return &clickupConfigRepo{db: db}
}

const clickupConfigColumns = `id, api_key, team_id, default_list_id, atendimentos_list_id, agenda_list_id, updated_by, created_at, updated_at`

func (r *clickupConfigRepo) Get(ctx context.Context) (*model.ClickUpConfig, error) {
	// Запись логически одна; ORDER BY защищает от мусорных дублей
	query := fmt.Sprintf(`
		SELECT %s
		FROM clickup_config
		ORDER BY created_at DESC
		LIMIT 1`, clickupConfigColumns)

	cfg := &model.ClickUpConfig{}
	err := r.db.QueryRow(ctx, query).Scan(
		&cfg.ID, &cfg.APIKey, &cfg.TeamID, &cfg.DefaultListID,
		&cfg.AtendimentosListID, &cfg.AgendaListID,
		&cfg.UpdatedBy, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения конфигурации ClickUp: %w", err)
	}
	return cfg, nil
}

func (r *clickupConfigRepo) Replace(ctx context.Context, cfg *model.ClickUpConfig) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM clickup_config`); err != nil {
		return fmt.Errorf("ошибка очистки конфигурации ClickUp: %w", err)
	}

	query := `
		INSERT INTO clickup_config (api_key, team_id, default_list_id, atendimentos_list_id, agenda_list_id, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		cfg.APIKey, cfg.TeamID, cfg.DefaultListID,
		cfg.AtendimentosListID, cfg.AgendaListID, cfg.UpdatedBy,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения конфигурации ClickUp: %w", err)
	}
	return nil
}
