package model

import "time"

// ClickUpConfig — конфигурация интеграции с ClickUp.
// Хранится в таблице clickup_config. Запись одна на инсталляцию:
// обновление выполняется транзакционной заменой.
type ClickUpConfig struct {
	// ID — UUID записи
	ID string
	// APIKey — персональный токен ClickUp
	APIKey string
	// TeamID — идентификатор workspace ClickUp
	TeamID string
	// DefaultListID — список по умолчанию для создаваемых задач
	DefaultListID string
	// AtendimentosListID — список задач модуля Atendimentos (может быть пуст)
	AtendimentosListID string
	// AgendaListID — список задач модуля Agenda (может быть пуст)
	AgendaListID string
	// UpdatedBy — email администратора, сохранившего конфигурацию
	UpdatedBy string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// Assignee — соответствие имени сотрудника и его ID в ClickUp.
// Хранится в таблице assignee_map.
type Assignee struct {
	// ID — UUID записи
	ID string
	// Name — имя сотрудника, как оно встречается в тексте диалога
	Name string
	// ClickUpUserID — идентификатор пользователя в ClickUp
	ClickUpUserID int64
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// TaskDraft — черновик задачи, извлечённый из текста диалога.
// Поля соответствуют структурированному ответу ИИ-ассистента.
type TaskDraft struct {
	// Title — заголовок задачи
	Title string
	// Client — имя клиента
	Client string
	// Reason — причина обращения
	Reason string
	// Comment — комментарий/решение. При деградации извлечения
	// содержит исходный текст целиком.
	Comment string
	// Attendant — имя ответственного сотрудника
	Attendant string
	// Company — компания клиента (STV и прочие)
	Company string
	// StartDate — дата начала в формате YYYY-MM-DD (пустая, если нет)
	StartDate string
	// StartTime — время начала в формате HH:MM
	StartTime string
	// DueDate — дата завершения в формате YYYY-MM-DD
	DueDate string
	// DueTime — время завершения в формате HH:MM
	DueTime string
	// AssigneeIDs — идентификаторы ответственных, когда ответ
	// содержит их напрямую. Пустой список — разрешение по имени Attendant.
	AssigneeIDs []int64
	// StartMillis — время начала в epoch-ms, когда задано напрямую.
	// nil — вычисляется из StartDate/StartTime.
	StartMillis *int64
	// DueMillis — время завершения в epoch-ms, когда задано напрямую.
	DueMillis *int64
}
