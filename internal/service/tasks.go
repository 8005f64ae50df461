// tasks.go — сервис извлечения черновиков и отправки задач в ClickUp.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flowcenter/flowcenter/internal/clickup"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/extractor"
	"github.com/flowcenter/flowcenter/internal/repository"
)

// TaskService — конвейер "текст диалога → черновик → задача ClickUp".
type TaskService struct {
	configSvc         *ClickUpConfigService
	assignees         repository.AssigneeMapRepository
	client            *clickup.Client
	extractor         extractor.Extractor
	defaultAssigneeID int64
	timezone          *time.Location
	logger            *slog.Logger
}

// NewTaskService создаёт сервис задач.
func NewTaskService(
	configSvc *ClickUpConfigService,
	assignees repository.AssigneeMapRepository,
	client *clickup.Client,
	ext extractor.Extractor,
	defaultAssigneeID int64,
	timezone *time.Location,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		configSvc:         configSvc,
		assignees:         assignees,
		client:            client,
		extractor:         ext,
		defaultAssigneeID: defaultAssigneeID,
		timezone:          timezone,
		logger:            logger.With(slog.String("service", "tasks")),
	}
}

// Prompt возвращает prompt для ассистента по тексту диалога.
func (s *TaskService) Prompt(conversation string) string {
	return extractor.BuildPrompt(conversation)
}

// Extract разбирает ответ ассистента в черновик задачи
// активной стратегией извлечения.
func (s *TaskService) Extract(raw string) (*model.TaskDraft, error) {
	draft, err := s.extractor.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return draft, nil
}

// Submit создаёт задачу ClickUp из черновика.
//
// Задача уходит в список Atendimentos; если он не настроен —
// в список по умолчанию. Ответственный разрешается по имени через
// карту assignee_map; неизвестное имя — ответственный по умолчанию;
// заданный черновиком список id уходит как есть.
func (s *TaskService) Submit(ctx context.Context, draft *model.TaskDraft) (*clickup.Task, error) {
	cfg, err := s.configSvc.Get(ctx)
	if err != nil {
		return nil, err
	}

	listID := cfg.AtendimentosListID
	if strings.TrimSpace(listID) == "" {
		listID = cfg.DefaultListID
	}
	if strings.TrimSpace(listID) == "" {
		return nil, fmt.Errorf("%w: в конфигурации ClickUp не задан список задач", ErrValidation)
	}

	assigneeID := s.resolveAssignee(ctx, draft.Attendant)

	// Информационный запрос статусов списка. Результат пока не
	// используется для подстановки, сбой не блокирует отправку.
	if _, stErr := s.client.GetListStatuses(ctx, cfg.APIKey, listID); stErr != nil {
		s.logger.Warn("Не удалось получить статусы списка",
			slog.String("list_id", listID),
			slog.String("error", stErr.Error()),
		)
	}

	req, err := clickup.BuildTask(draft, assigneeID, clickup.DefaultStatus, s.timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	task, err := s.client.CreateTask(ctx, cfg.APIKey, listID, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClickUpUnavailable, err)
	}

	s.logger.Info("Задача отправлена в ClickUp",
		slog.String("task_id", task.ID),
		slog.String("title", req.Name),
		slog.Int64("assignee", assigneeID),
	)
	return task, nil
}

// resolveAssignee разрешает имя ответственного в ID ClickUp.
// Неизвестное или пустое имя — ID по умолчанию.
func (s *TaskService) resolveAssignee(ctx context.Context, name string) int64 {
	if strings.TrimSpace(name) == "" {
		return s.defaultAssigneeID
	}

	a, err := s.assignees.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Ошибка поиска ответственного, используется ID по умолчанию",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}
		return s.defaultAssigneeID
	}
	return a.ClickUpUserID
}
