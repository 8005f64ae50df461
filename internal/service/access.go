// access.go — сервис доступов к модулям и навигации.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/domain/modules"
	"github.com/flowcenter/flowcenter/internal/events"
	"github.com/flowcenter/flowcenter/internal/repository"
)

// AccessService — управление доступами пользователей к модулям.
type AccessService struct {
	userModules repository.UserModuleRepository
	bus         *events.Bus
	logger      *slog.Logger
}

// NewAccessService создаёт сервис доступов.
func NewAccessService(
	userModules repository.UserModuleRepository,
	bus *events.Bus,
	logger *slog.Logger,
) *AccessService {
	return &AccessService{
		userModules: userModules,
		bus:         bus,
		logger:      logger.With(slog.String("service", "access")),
	}
}

// Navigation возвращает элементы навигации, видимые профилю.
// Доступы читаются из БД на каждый вызов: изменения администратора
// применяются без повторного входа.
func (s *AccessService) Navigation(ctx context.Context, p *model.Profile) ([]model.NavigationItem, error) {
	set, err := s.userModules.EnabledSet(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения доступов: %w", err)
	}
	return modules.NavigationItems(modules.Visible(p.Role, set)), nil
}

// HasAccess проверяет доступ профиля к модулю: нужна включённая
// ссылка доступа; AdminOnly-модули дополнительно требуют роль admin.
func (s *AccessService) HasAccess(ctx context.Context, p *model.Profile, moduleID int) (bool, error) {
	m, ok := modules.ByID(moduleID)
	if !ok {
		return false, ErrUnknownModule
	}
	if m.AdminOnly && !p.IsAdmin() {
		return false, nil
	}

	set, err := s.userModules.EnabledSet(ctx, p.ID)
	if err != nil {
		return false, fmt.Errorf("ошибка чтения доступов: %w", err)
	}
	return set[moduleID], nil
}

// ModuleState — модуль каталога с флагом доступа пользователя.
type ModuleState struct {
	Module  model.Module
	Enabled bool
}

// UserModules возвращает состояние всех модулей каталога
// для пользователя (для экрана администрирования).
func (s *AccessService) UserModules(ctx context.Context, userID string) ([]ModuleState, error) {
	set, err := s.userModules.EnabledSet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения доступов: %w", err)
	}

	cat := modules.Catalog()
	result := make([]ModuleState, 0, len(cat))
	for _, m := range cat {
		result = append(result, ModuleState{Module: m, Enabled: set[m.ID]})
	}
	return result, nil
}

// SetModuleAccess включает или выключает доступ пользователя к модулю
// и публикует событие modules-updated для SSE-подписчиков.
func (s *AccessService) SetModuleAccess(ctx context.Context, adminEmail, userID string, moduleID int, enabled bool) error {
	if !modules.Exists(moduleID) {
		return ErrUnknownModule
	}

	um := &model.UserModule{UserID: userID, ModuleID: moduleID, Enabled: enabled}
	if err := s.userModules.Upsert(ctx, um); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка изменения доступа: %w", err)
	}

	s.bus.Publish(events.Event{Name: events.ModulesUpdated, UserID: userID})

	s.logger.Info("Доступ к модулю изменён",
		slog.String("user_id", userID),
		slog.Int("module_id", moduleID),
		slog.Bool("enabled", enabled),
		slog.String("changed_by", adminEmail),
	)
	return nil
}
