// clickup.go — обработчики конфигурации ClickUp, её проверки
// и карты ответственных.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/service"
)

// ClickUpHandler — обработчики /api/v1/admin/clickup-config*,
// /api/v1/admin/assignees* и /api/v1/clickup/test.
type ClickUpHandler struct {
	configs   *service.ClickUpConfigService
	assignees *service.AssigneeService
	logger    *slog.Logger
}

// NewClickUpHandler создаёт обработчик интеграции ClickUp.
func NewClickUpHandler(configs *service.ClickUpConfigService, assignees *service.AssigneeService, logger *slog.Logger) *ClickUpHandler {
	return &ClickUpHandler{
		configs:   configs,
		assignees: assignees,
		logger:    logger.With(slog.String("component", "clickup_handler")),
	}
}

// configResponse — конфигурация ClickUp в API. Консоль
// административная, ключ возвращается как есть.
type configResponse struct {
	APIKey             string `json:"api_key"`
	TeamID             string `json:"team_id"`
	DefaultListID      string `json:"default_list_id"`
	AtendimentosListID string `json:"atendimentos_list_id"`
	AgendaListID       string `json:"agenda_list_id"`
	UpdatedBy          string `json:"updated_by"`
	UpdatedAt          string `json:"updated_at"`
}

func toConfigResponse(cfg *model.ClickUpConfig) configResponse {
	return configResponse{
		APIKey:             cfg.APIKey,
		TeamID:             cfg.TeamID,
		DefaultListID:      cfg.DefaultListID,
		AtendimentosListID: cfg.AtendimentosListID,
		AgendaListID:       cfg.AgendaListID,
		UpdatedBy:          cfg.UpdatedBy,
		UpdatedAt:          cfg.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleGetConfig обрабатывает GET /api/v1/admin/clickup-config.
func (h *ClickUpHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Get(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoConfig) {
			apierrors.NotFound(w, "интеграция ClickUp не настроена")
			return
		}
		h.logger.Error("Ошибка чтения конфигурации", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}

	writeJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleSaveConfig обрабатывает PUT /api/v1/admin/clickup-config.
// Перезапись существующей конфигурации без confirm=true —
// 409 CONFIRM_REQUIRED. Отвечает конфигурацией, перечитанной из БД.
func (h *ClickUpHandler) HandleSaveConfig(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())

	var req struct {
		APIKey             string `json:"api_key"`
		TeamID             string `json:"team_id"`
		DefaultListID      string `json:"default_list_id"`
		AtendimentosListID string `json:"atendimentos_list_id"`
		AgendaListID       string `json:"agenda_list_id"`
		Confirm            bool   `json:"confirm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg := &model.ClickUpConfig{
		APIKey:             req.APIKey,
		TeamID:             req.TeamID,
		DefaultListID:      req.DefaultListID,
		AtendimentosListID: req.AtendimentosListID,
		AgendaListID:       req.AgendaListID,
		UpdatedBy:          admin.Email,
	}
	saved, err := h.configs.Save(r.Context(), cfg, req.Confirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfirmRequired):
			apierrors.ConfirmRequired(w, "замена конфигурации требует подтверждения (confirm=true)")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка сохранения конфигурации", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	writeJSON(w, http.StatusOK, toConfigResponse(saved))
}

// HandleTestConfig обрабатывает GET /api/v1/admin/clickup-config/test.
// Для каждого настроенного списка — независимая проба; сбой одной
// не прерывает остальные.
func (h *ClickUpHandler) HandleTestConfig(w http.ResponseWriter, r *http.Request) {
	results, err := h.configs.TestAll(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoConfig) {
			apierrors.NotFound(w, "интеграция ClickUp не настроена")
			return
		}
		h.logger.Error("Ошибка проверки конфигурации", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// probeResponse — результат пробы одного списка.
type probeResponse struct {
	Message string `json:"message,omitempty"`
	Task    any    `json:"task,omitempty"`
}

// HandleProbe обрабатывает GET /api/v1/clickup/test?listId=…
// Без listId — 400; без конфигурации или при сбое выше — 500.
func (h *ClickUpHandler) HandleProbe(w http.ResponseWriter, r *http.Request) {
	listID := r.URL.Query().Get("listId")
	if listID == "" {
		apierrors.ValidationError(w, "параметр listId обязателен")
		return
	}

	task, err := h.configs.Probe(r.Context(), listID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoConfig):
			apierrors.InternalError(w, "интеграция ClickUp не настроена")
		default:
			h.logger.Error("Ошибка проверки ClickUp", slog.String("error", err.Error()))
			apierrors.InternalError(w, err.Error())
		}
		return
	}

	if task == nil {
		writeJSON(w, http.StatusOK, probeResponse{Message: "Nenhuma tarefa encontrada"})
		return
	}
	writeJSON(w, http.StatusOK, probeResponse{Task: task})
}

// assigneeResponse — соответствие имени и ID ClickUp.
type assigneeResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ClickUpUserID int64  `json:"clickup_user_id"`
}

// HandleListAssignees обрабатывает GET /api/v1/admin/assignees.
func (h *ClickUpHandler) HandleListAssignees(w http.ResponseWriter, r *http.Request) {
	list, err := h.assignees.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения карты ответственных", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}

	resp := make([]assigneeResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, assigneeResponse{ID: a.ID, Name: a.Name, ClickUpUserID: a.ClickUpUserID})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUpsertAssignee обрабатывает PUT /api/v1/admin/assignees.
func (h *ClickUpHandler) HandleUpsertAssignee(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())

	var req struct {
		Name          string `json:"name"`
		ClickUpUserID int64  `json:"clickup_user_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	a := &model.Assignee{Name: req.Name, ClickUpUserID: req.ClickUpUserID}
	if err := h.assignees.Upsert(r.Context(), admin.Email, a); err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка сохранения ответственного", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, assigneeResponse{ID: a.ID, Name: a.Name, ClickUpUserID: a.ClickUpUserID})
}

// HandleDeleteAssignee обрабатывает DELETE /api/v1/admin/assignees/{id}.
func (h *ClickUpHandler) HandleDeleteAssignee(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())

	err := h.assignees.Delete(r.Context(), admin.Email, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "соответствие не найдено")
			return
		}
		h.logger.Error("Ошибка удаления ответственного", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
