// tasks.go — обработчики конвейера "диалог → черновик → задача ClickUp".
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/service"
)

// TasksHandler — обработчики /api/v1/tasks.
type TasksHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTasksHandler создаёт обработчик задач.
func NewTasksHandler(tasks *service.TaskService, logger *slog.Logger) *TasksHandler {
	return &TasksHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "tasks_handler")),
	}
}

// draftResponse — черновик задачи в API.
type draftResponse struct {
	Title     string `json:"title"`
	Client    string `json:"client"`
	Reason    string `json:"reason"`
	Comment   string `json:"comment"`
	Attendant string `json:"attendant"`
	Company   string `json:"company"`
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time"`
	DueDate   string `json:"due_date"`
	DueTime   string `json:"due_time"`
	// Поля строгой стратегии: значения внешней схемы как есть
	AssigneeIDs []int64 `json:"assignee_ids,omitempty"`
	StartMillis *int64  `json:"start_millis,omitempty"`
	DueMillis   *int64  `json:"due_millis,omitempty"`
}

func toDraftResponse(d *model.TaskDraft) draftResponse {
	return draftResponse{
		Title:       d.Title,
		Client:      d.Client,
		Reason:      d.Reason,
		Comment:     d.Comment,
		Attendant:   d.Attendant,
		Company:     d.Company,
		StartDate:   d.StartDate,
		StartTime:   d.StartTime,
		DueDate:     d.DueDate,
		DueTime:     d.DueTime,
		AssigneeIDs: d.AssigneeIDs,
		StartMillis: d.StartMillis,
		DueMillis:   d.DueMillis,
	}
}

// HandleExtract обрабатывает POST /api/v1/tasks/extract —
// разбор ответа ассистента в черновик задачи.
// При prompt_only=true в теле возвращается prompt для ассистента
// по тексту диалога, без извлечения.
func (h *TasksHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		PromptOnly bool   `json:"prompt_only"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		apierrors.ValidationError(w, "text обязателен")
		return
	}

	if req.PromptOnly {
		writeJSON(w, http.StatusOK, map[string]string{"prompt": h.tasks.Prompt(req.Text)})
		return
	}

	draft, err := h.tasks.Extract(req.Text)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка извлечения черновика", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

// createdTaskResponse — созданная задача ClickUp.
type createdTaskResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HandleSubmit обрабатывает POST /api/v1/tasks —
// создание задачи ClickUp. Принимает либо сырой текст ответа
// ассистента (text, опционально client), либо готовый черновик
// (оператор мог его поправить).
func (h *TasksHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		draftResponse
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var draft *model.TaskDraft
	if req.Text != "" {
		extracted, err := h.tasks.Extract(req.Text)
		if err != nil {
			apierrors.ValidationError(w, err.Error())
			return
		}
		if req.Client != "" {
			extracted.Client = req.Client
		}
		draft = extracted
	} else {
		draft = &model.TaskDraft{
			Title:       req.Title,
			Client:      req.Client,
			Reason:      req.Reason,
			Comment:     req.Comment,
			Attendant:   req.Attendant,
			Company:     req.Company,
			StartDate:   req.StartDate,
			StartTime:   req.StartTime,
			DueDate:     req.DueDate,
			DueTime:     req.DueTime,
			AssigneeIDs: req.AssigneeIDs,
			StartMillis: req.StartMillis,
			DueMillis:   req.DueMillis,
		}
	}

	task, err := h.tasks.Submit(r.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoConfig):
			apierrors.NotFound(w, "интеграция ClickUp не настроена")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrClickUpUnavailable):
			apierrors.ClickUpUnavailable(w, err.Error())
		default:
			h.logger.Error("Ошибка создания задачи", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}

	writeJSON(w, http.StatusCreated, createdTaskResponse{ID: task.ID, Name: task.Name, URL: task.URL})
}
