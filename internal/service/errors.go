// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrInvalidRole — некорректная роль.
	ErrInvalidRole = errors.New("некорректная роль: допустимые значения — admin, user")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	// ErrConfirmRequired — операция изменяет чувствительные данные и требует подтверждения.
	ErrConfirmRequired = errors.New("требуется подтверждение операции")
	// ErrNoConfig — интеграция ClickUp не настроена.
	ErrNoConfig = errors.New("интеграция ClickUp не настроена")
	// ErrClickUpUnavailable — ClickUp API недоступен или вернул ошибку.
	ErrClickUpUnavailable = errors.New("ClickUp недоступен")
	// ErrUnknownModule — модуль отсутствует в каталоге.
	ErrUnknownModule = errors.New("неизвестный модуль")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidToken — токен сброса пароля недействителен или истёк.
	ErrInvalidToken = errors.New("токен недействителен или истёк")
)
