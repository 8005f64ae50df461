// profiles.go — сервис профилей: регистрация, вход, администрирование
// пользователей, сброс пароля.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/flowcenter/flowcenter/internal/auth"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/mailer"
	"github.com/flowcenter/flowcenter/internal/repository"
)

// resetTokenTTL — срок действия токена сброса пароля.
const resetTokenTTL = time.Hour

// ProfileService — бизнес-логика профилей и аутентификации.
type ProfileService struct {
	profiles repository.ProfileRepository
	resets   repository.PasswordResetRepository
	mailer   mailer.Mailer
	resetURL string
	logger   *slog.Logger
}

// NewProfileService создаёт сервис профилей.
// resetURL — базовый адрес страницы установки нового пароля.
func NewProfileService(
	profiles repository.ProfileRepository,
	resets repository.PasswordResetRepository,
	m mailer.Mailer,
	resetURL string,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		resets:   resets,
		mailer:   m,
		resetURL: resetURL,
		logger:   logger.With(slog.String("service", "profiles")),
	}
}

// Register создаёт профиль с ролью user.
// ErrConflict при дублирующемся email, ErrValidation при некорректном
// email, auth.ErrWeakPassword при слабом пароле.
func (s *ProfileService) Register(ctx context.Context, email, fullName, password string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: некорректный email %q", ErrValidation, email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	p := &model.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Role:         model.RoleUser,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка регистрации: %w", err)
	}

	s.logger.Info("Профиль зарегистрирован",
		slog.String("user_id", p.ID),
		slog.String("email", p.Email),
	)
	return p, nil
}

// Login проверяет пару email/пароль и возвращает профиль.
// ErrInvalidCredentials и для неизвестного email, и для неверного
// пароля — ответ не раскрывает, какая часть неверна.
func (s *ProfileService) Login(ctx context.Context, email, password string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка входа: %w", err)
	}
	if !auth.CheckPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// Get возвращает профиль по UUID.
func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return p, nil
}

// UpdateFullName обновляет отображаемое имя профиля.
func (s *ProfileService) UpdateFullName(ctx context.Context, id, fullName string) error {
	if err := s.profiles.UpdateFullName(ctx, id, strings.TrimSpace(fullName)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления имени: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *ProfileService) ChangePassword(ctx context.Context, id, current, newPassword string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(p.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.profiles.UpdatePasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("ошибка смены пароля: %w", err)
	}

	s.logger.Info("Пароль изменён", slog.String("user_id", id))
	return nil
}

// List возвращает все профили. Без пагинации: количество
// пользователей инсталляции заведомо невелико.
func (s *ProfileService) List(ctx context.Context) ([]*model.Profile, error) {
	list, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка профилей: %w", err)
	}
	return list, nil
}

// AdminUpdate обновляет профиль произвольного пользователя
// (операция администратора). Пустой email оставляет адрес прежним.
func (s *ProfileService) AdminUpdate(ctx context.Context, adminEmail, userID, email, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: некорректный email %q", ErrValidation, email)
		}
		if err := s.profiles.UpdateEmail(ctx, userID, email); err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return ErrConflict
			case errors.Is(err, repository.ErrNotFound):
				return ErrNotFound
			}
			return fmt.Errorf("ошибка обновления email: %w", err)
		}
	}

	if err := s.profiles.UpdateFullName(ctx, userID, strings.TrimSpace(fullName)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления имени: %w", err)
	}

	s.logger.Info("Профиль обновлён администратором",
		slog.String("user_id", userID),
		slog.String("changed_by", adminEmail),
	)
	return nil
}

// UpdateRole меняет роль пользователя (операция администратора).
func (s *ProfileService) UpdateRole(ctx context.Context, adminEmail, userID, role string) error {
	if !model.ValidRole(role) {
		return ErrInvalidRole
	}
	if err := s.profiles.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка смены роли: %w", err)
	}

	s.logger.Info("Роль пользователя изменена",
		slog.String("user_id", userID),
		slog.String("role", role),
		slog.String("changed_by", adminEmail),
	)
	return nil
}

// SetCustomUserID устанавливает пользовательский идентификатор.
// Первое назначение проходит без подтверждения; перезапись непустого
// идентификатора другим значением затрагивает внешние интеграции и
// без confirm отклоняется с ErrConfirmRequired.
func (s *ProfileService) SetCustomUserID(ctx context.Context, adminEmail, userID string, customID *string, confirm bool) error {
	if customID != nil {
		trimmed := strings.TrimSpace(*customID)
		if trimmed == "" {
			customID = nil
		} else {
			customID = &trimmed
		}
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка загрузки профиля: %w", err)
	}

	overwrite := p.CustomUserID != nil && *p.CustomUserID != "" &&
		(customID == nil || *customID != *p.CustomUserID)
	if overwrite && !confirm {
		return ErrConfirmRequired
	}

	if err := s.profiles.UpdateCustomUserID(ctx, userID, customID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка установки custom ID: %w", err)
	}

	s.logger.Info("Custom ID пользователя изменён",
		slog.String("user_id", userID),
		slog.String("changed_by", adminEmail),
	)
	return nil
}

// RequestPasswordReset создаёт токен сброса и отправляет письмо.
// Для неизвестного email операция молча успешна — существование
// аккаунта не раскрывается.
func (s *ProfileService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("Запрос сброса для неизвестного email", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("ошибка запроса сброса: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("ошибка генерации токена: %w", err)
	}

	pr := &model.PasswordReset{
		UserID:    p.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resets.Create(ctx, pr); err != nil {
		return fmt.Errorf("ошибка сохранения токена сброса: %w", err)
	}

	resetURL := s.resetURL + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, p.Email, resetURL); err != nil {
		return fmt.Errorf("ошибка отправки письма сброса: %w", err)
	}

	s.logger.Info("Отправлено письмо сброса пароля", slog.String("user_id", p.ID))
	return nil
}

// ConfirmPasswordReset устанавливает новый пароль по токену.
// ErrInvalidToken при неизвестном, использованном или истёкшем токене.
func (s *ProfileService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	pr, err := s.resets.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("ошибка проверки токена: %w", err)
	}
	if pr.UsedAt != nil || pr.Expired(time.Now()) {
		return ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Токен гасится до смены пароля: повторное использование
	// не должно пройти даже при сбое на следующем шаге
	if err := s.resets.MarkUsed(ctx, pr.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("ошибка гашения токена: %w", err)
	}
	if err := s.profiles.UpdatePasswordHash(ctx, pr.UserID, hash); err != nil {
		return fmt.Errorf("ошибка установки нового пароля: %w", err)
	}

	s.logger.Info("Пароль сброшен по токену", slog.String("user_id", pr.UserID))
	return nil
}

// generateResetToken возвращает криптослучайный токен (hex, 32 байта).
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken возвращает SHA-256 хэш токена (hex).
// В БД хранится только хэш.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
