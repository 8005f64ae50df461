// Пакет clickup — HTTP-клиент ClickUp API v2 и сборка payload задач.
package clickup

import "encoding/json"

// Идентификаторы кастомных полей списка задач в ClickUp.
const (
	// FieldClientProduct — поле "Cliente X Produto" (dropdown).
	FieldClientProduct = "5afa0167-4dcb-4ee0-a0a9-f82d3f3cfa71"
	// FieldProduct — поле "Produto" (dropdown).
	FieldProduct = "9908283b-8888-41c4-88ac-1f3dc9a0fdc6"

	// OptionCompanySTV — вариант поля Cliente X Produto для компании STV.
	OptionCompanySTV = "868e8xd1u"
	// OptionProductEobra — вариант поля Produto (Eobra).
	OptionProductEobra = "868e88q9j"
)

// DefaultStatus — статус, с которым создаются новые задачи.
const DefaultStatus = "concluído"

// Status — статус списка ClickUp.
type Status struct {
	Status  string `json:"status"`
	Type    string `json:"type"`
	Color   string `json:"color"`
	OrderID int    `json:"orderindex"`
}

// listResponse — ответ GET /list/{id}.
type listResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Statuses []Status `json:"statuses"`
}

// Task — задача ClickUp (усечённое представление ответа API).
type Task struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      json.RawMessage `json:"status"`
	URL         string          `json:"url"`
	DateCreated string          `json:"date_created"`
}

// tasksResponse — ответ GET /list/{id}/task.
type tasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// CustomField — значение кастомного поля при создании задачи.
// Value — ID варианта dropdown либо примитив; null допускается.
type CustomField struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// CreateTaskRequest — payload POST /list/{id}/task.
type CreateTaskRequest struct {
	Name string `json:"name"`
	// Description — сводка обращения (клиент, причина, ответственный).
	Description string `json:"description,omitempty"`
	// Content — текст решения/комментария, отдельным полем.
	Content      string        `json:"content,omitempty"`
	Status       string        `json:"status,omitempty"`
	Assignees    []int64       `json:"assignees,omitempty"`
	StartDate    *int64        `json:"start_date,omitempty"`
	DueDate      *int64        `json:"due_date,omitempty"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
}

// apiError — тело ошибки ClickUp API.
type apiError struct {
	Err   string `json:"err"`
	Ecode string `json:"ECODE"`
}
