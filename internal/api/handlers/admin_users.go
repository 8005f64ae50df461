// admin_users.go — административные обработчики пользователей
// и их доступов к модулям.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/domain/modules"
	"github.com/flowcenter/flowcenter/internal/service"
)

// AdminUsersHandler — обработчики /api/v1/admin/users*.
type AdminUsersHandler struct {
	profiles *service.ProfileService
	access   *service.AccessService
	logger   *slog.Logger
}

// NewAdminUsersHandler создаёт обработчик администрирования пользователей.
func NewAdminUsersHandler(profiles *service.ProfileService, access *service.AccessService, logger *slog.Logger) *AdminUsersHandler {
	return &AdminUsersHandler{
		profiles: profiles,
		access:   access,
		logger:   logger.With(slog.String("component", "admin_users_handler")),
	}
}

// userListResponse — список пользователей.
type userListResponse struct {
	Users []profileResponse `json:"users"`
	Total int               `json:"total"`
}

// HandleList обрабатывает GET /api/v1/admin/users.
// Список отдаётся целиком, без пагинации.
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.profiles.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения списка пользователей", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}

	resp := userListResponse{
		Users: make([]profileResponse, 0, len(list)),
		Total: len(list),
	}
	for _, p := range list {
		resp.Users = append(resp.Users, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet обрабатывает GET /api/v1/admin/users/{id}.
func (h *AdminUsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "пользователь не найден")
			return
		}
		h.logger.Error("Ошибка получения пользователя", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// HandleUpdate обрабатывает PUT /api/v1/admin/users/{id} —
// правка профиля пользователя администратором.
func (h *AdminUsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.profiles.AdminUpdate(r.Context(), admin.Email, userID, req.Email, req.FullName); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, "email уже занят")
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "пользователь не найден")
		default:
			h.logger.Error("Ошибка обновления пользователя", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateRole обрабатывает PUT /api/v1/admin/users/{id}/role.
func (h *AdminUsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.profiles.UpdateRole(r.Context(), admin.Email, userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "пользователь не найден")
		default:
			h.logger.Error("Ошибка смены роли", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetCustomID обрабатывает PUT /api/v1/admin/users/{id}/custom-id.
// Перезапись непустого идентификатора без confirm=true в теле —
// 409 CONFIRM_REQUIRED; первое назначение подтверждения не требует.
func (h *AdminUsersHandler) HandleSetCustomID(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	var req struct {
		CustomUserID *string `json:"custom_user_id"`
		Confirm      bool    `json:"confirm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.profiles.SetCustomUserID(r.Context(), admin.Email, userID, req.CustomUserID, req.Confirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfirmRequired):
			apierrors.ConfirmRequired(w, "изменение custom ID требует подтверждения (confirm=true)")
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "пользователь не найден")
		default:
			h.logger.Error("Ошибка установки custom ID", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// moduleStateResponse — модуль каталога с флагом доступа.
type moduleStateResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	AdminOnly bool   `json:"admin_only"`
	Enabled   bool   `json:"enabled"`
}

// HandleListUserModules обрабатывает GET /api/v1/admin/users/{id}/modules.
func (h *AdminUsersHandler) HandleListUserModules(w http.ResponseWriter, r *http.Request) {
	states, err := h.access.UserModules(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Ошибка получения доступов", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}

	resp := make([]moduleStateResponse, 0, len(states))
	for _, st := range states {
		resp = append(resp, moduleStateResponse{
			ID:        st.Module.ID,
			Name:      st.Module.Name,
			Path:      st.Module.Path,
			AdminOnly: st.Module.AdminOnly,
			Enabled:   st.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSetUserModule обрабатывает PUT /api/v1/admin/users/{id}/modules/{moduleID}.
func (h *AdminUsersHandler) HandleSetUserModule(w http.ResponseWriter, r *http.Request) {
	admin := guard.ProfileFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	moduleID, err := strconv.Atoi(chi.URLParam(r, "moduleID"))
	if err != nil {
		apierrors.ValidationError(w, "некорректный идентификатор модуля")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err = h.access.SetModuleAccess(r.Context(), admin.Email, userID, moduleID, req.Enabled)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownModule):
			apierrors.NotFound(w, "модуль не найден")
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "пользователь не найден")
		default:
			h.logger.Error("Ошибка изменения доступа", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// catalogModuleResponse — модуль каталога.
type catalogModuleResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Icon      string `json:"icon"`
	AdminOnly bool   `json:"admin_only"`
}

// HandleCatalog обрабатывает GET /api/v1/modules — полный каталог модулей.
func (h *AdminUsersHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := modules.Catalog()
	resp := make([]catalogModuleResponse, 0, len(cat))
	for _, m := range cat {
		resp = append(resp, catalogModuleResponse{
			ID: m.ID, Name: m.Name, Path: m.Path, Icon: m.Icon, AdminOnly: m.AdminOnly,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
