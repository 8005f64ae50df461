// auth.go — обработчики аутентификации и собственного профиля.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/auth"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/service"
)

// AuthHandler — обработчики /api/v1/auth/* и /api/v1/profile.
type AuthHandler struct {
	profiles *service.ProfileService
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(profiles *service.ProfileService, sessions *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// profileResponse — представление профиля в API (без хэша пароля).
type profileResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	CustomUserID *string `json:"custom_user_id"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role,
		CustomUserID: p.CustomUserID,
	}
}

// HandleRegister обрабатывает POST /api/v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.profiles.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, "email уже зарегистрирован")
		case errors.Is(err, service.ErrValidation), errors.Is(err, auth.ErrWeakPassword):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка регистрации", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}

	if err := h.sessions.SetCookie(w, p.ID); err != nil {
		h.logger.Error("Ошибка выпуска сессии", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(p))
}

// HandleLogin обрабатывает POST /api/v1/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.profiles.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierrors.Unauthorized(w, "неверный email или пароль")
			return
		}
		h.logger.Error("Ошибка входа", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}

	if err := h.sessions.SetCookie(w, p.ID); err != nil {
		h.logger.Error("Ошибка выпуска сессии", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// HandleLogout обрабатывает POST /api/v1/auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetProfile обрабатывает GET /api/v1/profile.
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	p := guard.ProfileFromContext(r.Context())
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// HandleUpdateProfile обрабатывает PUT /api/v1/profile —
// изменение собственного отображаемого имени.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := guard.ProfileFromContext(r.Context())

	var req struct {
		FullName string `json:"full_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.profiles.UpdateFullName(r.Context(), p.ID, req.FullName); err != nil {
		h.logger.Error("Ошибка обновления профиля", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}

	updated, err := h.profiles.Get(r.Context(), p.ID)
	if err != nil {
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(updated))
}

// HandleChangePassword обрабатывает PUT /api/v1/auth/password —
// смену пароля с проверкой текущего.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p := guard.ProfileFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.profiles.ChangePassword(r.Context(), p.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apierrors.Unauthorized(w, "текущий пароль неверен")
		case errors.Is(err, auth.ErrWeakPassword):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка смены пароля", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRequestReset обрабатывает POST /api/v1/auth/reset.
// Ответ всегда 202: существование аккаунта не раскрывается.
func (h *AuthHandler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.profiles.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("Ошибка запроса сброса пароля", slog.String("error", err.Error()))
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleConfirmReset обрабатывает POST /api/v1/auth/reset/confirm.
func (h *AuthHandler) HandleConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.profiles.ConfirmPasswordReset(r.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			apierrors.ValidationError(w, "токен недействителен или истёк")
		case errors.Is(err, auth.ErrWeakPassword):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка подтверждения сброса", slog.String("error", err.Error()))
			apierrors.InternalError(w, "внутренняя ошибка")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
