// clickup_config.go — сервис конфигурации интеграции ClickUp.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/flowcenter/flowcenter/internal/clickup"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/repository"
)

// ClickUpConfigService — чтение, сохранение и проверка конфигурации ClickUp.
type ClickUpConfigService struct {
	configs  repository.ClickUpConfigRepository
	txRunner *repository.TxRunner
	client   *clickup.Client
	logger   *slog.Logger
}

// NewClickUpConfigService создаёт сервис конфигурации ClickUp.
func NewClickUpConfigService(
	configs repository.ClickUpConfigRepository,
	txRunner *repository.TxRunner,
	client *clickup.Client,
	logger *slog.Logger,
) *ClickUpConfigService {
	return &ClickUpConfigService{
		configs:  configs,
		txRunner: txRunner,
		client:   client,
		logger:   logger.With(slog.String("service", "clickup_config")),
	}
}

// Get возвращает действующую конфигурацию.
// ErrNoConfig, если интеграция не настроена.
func (s *ClickUpConfigService) Get(ctx context.Context) (*model.ClickUpConfig, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("ошибка чтения конфигурации ClickUp: %w", err)
	}
	return cfg, nil
}

// Save заменяет конфигурацию. Замена — в одной транзакции:
// промежуточное состояние без конфигурации снаружи не наблюдаемо.
// Перезапись существующей записи без confirm отклоняется с
// ErrConfirmRequired. Возвращает конфигурацию, перечитанную из БД.
func (s *ClickUpConfigService) Save(ctx context.Context, cfg *model.ClickUpConfig, confirm bool) (*model.ClickUpConfig, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.TeamID) == "" {
		return nil, fmt.Errorf("%w: api_key и team_id обязательны", ErrValidation)
	}

	_, err := s.Get(ctx)
	switch {
	case err == nil:
		if !confirm {
			return nil, ErrConfirmRequired
		}
	case errors.Is(err, ErrNoConfig):
		// первая запись, подтверждение не требуется
	default:
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		return repository.NewClickUpConfigRepository(tx).Replace(ctx, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения конфигурации ClickUp: %w", err)
	}

	s.logger.Info("Конфигурация ClickUp обновлена",
		slog.String("team_id", cfg.TeamID),
		slog.String("updated_by", cfg.UpdatedBy),
	)
	return s.Get(ctx)
}

// ProbeResult — результат пробы одного списка.
type ProbeResult struct {
	ListID string        `json:"list_id"`
	Task   *clickup.Task `json:"task,omitempty"`
	Empty  bool          `json:"empty,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// TestAll проверяет все настроенные списки: для каждого непустого
// list id выполняется независимая проба (первая задача списка).
// Сбой одной пробы не прерывает остальные.
func (s *ClickUpConfigService) TestAll(ctx context.Context) (map[string]ProbeResult, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	lists := map[string]string{
		"default":      cfg.DefaultListID,
		"atendimentos": cfg.AtendimentosListID,
		"agenda":       cfg.AgendaListID,
	}

	results := make(map[string]ProbeResult, len(lists))
	for key, listID := range lists {
		if strings.TrimSpace(listID) == "" {
			continue
		}
		res := ProbeResult{ListID: listID}
		task, probeErr := s.client.GetFirstTask(ctx, cfg.APIKey, listID)
		switch {
		case probeErr == nil:
			res.Task = task
		case errors.Is(probeErr, clickup.ErrNoTasks):
			res.Empty = true
		default:
			res.Error = probeErr.Error()
		}
		results[key] = res
	}
	return results, nil
}

// Probe запрашивает первую задачу конкретного списка.
// Возвращает nil задачу, если список пуст.
func (s *ClickUpConfigService) Probe(ctx context.Context, listID string) (*clickup.Task, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.client.GetFirstTask(ctx, cfg.APIKey, listID)
	if err != nil {
		if errors.Is(err, clickup.ErrNoTasks) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrClickUpUnavailable, err)
	}
	return task, nil
}
