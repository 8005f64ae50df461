// events.go — SSE endpoint обновлений доступов к модулям.
// Клиент консоли держит соединение и перезапрашивает навигацию,
// получив событие modules-updated. Каждый SSE-клиент обслуживается
// в горутине своего запроса.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/events"
)

// keepAliveInterval — период SSE-комментариев, удерживающих соединение
// через прокси с таймаутом простоя.
const keepAliveInterval = 30 * time.Second

// EventsHandler — обработчик GET /api/v1/events/modules.
type EventsHandler struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewEventsHandler создаёт обработчик SSE.
func NewEventsHandler(bus *events.Bus, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		logger: logger.With(slog.String("component", "events_handler")),
	}
}

// HandleModules обрабатывает GET /api/v1/events/modules — SSE endpoint.
// Отдаёт события modules-updated, адресованные текущему профилю
// (или всем). Формат: event: modules-updated\ndata: {}\n\n.
// Graceful disconnect при закрытии клиентом соединения (context cancel).
func (h *EventsHandler) HandleModules(w http.ResponseWriter, r *http.Request) {
	p := guard.ProfileFromContext(r.Context())

	// Настраиваем заголовки SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Отключаем буферизацию Nginx

	// Используем http.ResponseController для корректной работы Flush()
	// через обёрнутый ResponseWriter (logging middleware и др.).
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		http.Error(w, "SSE не поддерживается", http.StatusInternalServerError)
		return
	}

	ch, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	h.logger.Debug("SSE клиент подключён", slog.String("user_id", p.ID))

	ctx := r.Context()
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE клиент отключён", slog.String("user_id", p.ID))
			return

		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case ev, ok := <-ch:
			if !ok {
				return
			}
			// Событие для другого пользователя пропускается
			if ev.UserID != "" && ev.UserID != p.ID {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", ev.Name); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
