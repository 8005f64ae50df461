package model

import "time"

// Module — запись каталога модулей консоли.
// Хранится в таблице modules, состав каталога фиксирован миграциями.
type Module struct {
	// ID — числовой идентификатор модуля (стабильный, совпадает с каталогом)
	ID int
	// Name — отображаемое имя модуля
	Name string
	// Path — путь модуля в консоли (/dashboard, /admin, ...)
	Path string
	// Icon — имя иконки для фронтенда
	Icon string
	// AdminOnly — модуль виден только администраторам
	AdminOnly bool
	// SortOrder — позиция в навигации
	SortOrder int
}

// UserModule — связка пользователь-модуль с флагом доступа.
// Хранится в таблице user_modules, уникальна по (user_id, module_id).
type UserModule struct {
	// ID — UUID записи
	ID string
	// UserID — UUID профиля
	UserID string
	// ModuleID — идентификатор модуля
	ModuleID int
	// Enabled — включён ли доступ
	Enabled bool
	// UpdatedAt — время последнего изменения
	UpdatedAt time.Time
}

// NavigationItem — элемент навигации, отдаваемый консоли.
type NavigationItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Icon string `json:"icon"`
}
