// assignees.go — сервис карты ответственных (имя → ID ClickUp).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/repository"
)

// AssigneeService — администрирование карты ответственных.
type AssigneeService struct {
	assignees repository.AssigneeMapRepository
	logger    *slog.Logger
}

// NewAssigneeService создаёт сервис карты ответственных.
func NewAssigneeService(assignees repository.AssigneeMapRepository, logger *slog.Logger) *AssigneeService {
	return &AssigneeService{
		assignees: assignees,
		logger:    logger.With(slog.String("service", "assignees")),
	}
}

// List возвращает все соответствия.
func (s *AssigneeService) List(ctx context.Context) ([]*model.Assignee, error) {
	list, err := s.assignees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения карты ответственных: %w", err)
	}
	return list, nil
}

// Upsert создаёт или обновляет соответствие.
func (s *AssigneeService) Upsert(ctx context.Context, adminEmail string, a *model.Assignee) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: имя обязательно", ErrValidation)
	}
	if a.ClickUpUserID <= 0 {
		return fmt.Errorf("%w: clickup_user_id должен быть положительным", ErrValidation)
	}

	if err := s.assignees.Upsert(ctx, a); err != nil {
		return fmt.Errorf("ошибка сохранения ответственного: %w", err)
	}

	s.logger.Info("Соответствие ответственного сохранено",
		slog.String("name", a.Name),
		slog.Int64("clickup_user_id", a.ClickUpUserID),
		slog.String("changed_by", adminEmail),
	)
	return nil
}

// Delete удаляет соответствие по UUID.
func (s *AssigneeService) Delete(ctx context.Context, adminEmail, id string) error {
	if err := s.assignees.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления ответственного: %w", err)
	}

	s.logger.Info("Соответствие ответственного удалено",
		slog.String("id", id),
		slog.String("changed_by", adminEmail),
	)
	return nil
}
