// Пакет model — доменные модели FlowCenter.
package model

import "time"

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole проверяет, что роль входит в допустимый набор.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Profile — профиль пользователя консоли.
// Хранится в таблице profiles.
type Profile struct {
	// ID — UUID профиля
	ID string
	// Email — адрес электронной почты (уникальный)
	Email string
	// FullName — отображаемое имя
	FullName string
	// Role — роль (admin, user)
	Role string
	// CustomUserID — пользовательский идентификатор для внешних интеграций
	// (nil, если не назначен)
	CustomUserID *string
	// PasswordHash — bcrypt-хэш пароля. Никогда не сериализуется наружу.
	PasswordHash string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// IsAdmin сообщает, имеет ли профиль административную роль.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
