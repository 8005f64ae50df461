// navigation.go — обработчик навигации консоли.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/service"
)

// NavigationHandler — обработчик GET /api/v1/navigation.
type NavigationHandler struct {
	access *service.AccessService
	logger *slog.Logger
}

// NewNavigationHandler создаёт обработчик навигации.
func NewNavigationHandler(access *service.AccessService, logger *slog.Logger) *NavigationHandler {
	return &NavigationHandler{
		access: access,
		logger: logger.With(slog.String("component", "navigation_handler")),
	}
}

// HandleNavigation обрабатывает GET /api/v1/navigation —
// модули, видимые текущему профилю, в порядке навигации.
func (h *NavigationHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	p := guard.ProfileFromContext(r.Context())

	items, err := h.access.Navigation(r.Context(), p)
	if err != nil {
		h.logger.Error("Ошибка построения навигации",
			slog.String("error", err.Error()),
			slog.String("user_id", p.ID),
		)
		apierrors.InternalError(w, "внутренняя ошибка")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
