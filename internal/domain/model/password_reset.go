package model

import "time"

// PasswordReset — одноразовый токен сброса пароля.
// Хранится в таблице password_resets, токен хранится в виде SHA-256 хэша.
type PasswordReset struct {
	// ID — UUID записи
	ID string
	// UserID — UUID профиля
	UserID string
	// TokenHash — SHA-256 хэш токена (hex)
	TokenHash string
	// ExpiresAt — срок действия токена
	ExpiresAt time.Time
	// UsedAt — время использования (nil, если токен ещё действителен)
	UsedAt *time.Time
	// CreatedAt — время создания записи
	CreatedAt time.Time
}

// Expired сообщает, истёк ли срок действия токена на момент now.
func (r *PasswordReset) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
