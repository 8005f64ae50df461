// Пакет events — внутрипроцессная шина событий для SSE-уведомлений.
// Изменения доступов к модулям публикуются в шину, подключённые
// SSE-клиенты получают событие и перезапрашивают навигацию.
package events

import (
	"log/slog"
	"sync"
)

// Имена событий шины.
const (
	// ModulesUpdated — изменились доступы пользователя к модулям.
	ModulesUpdated = "modules-updated"
)

// Event — событие шины.
type Event struct {
	// Name — имя события (modules-updated)
	Name string
	// UserID — профиль, которого касается событие (пустой — всех)
	UserID string
}

// Bus — шина событий с подпиской через каналы.
// Публикация не блокируется: события для отставших подписчиков
// отбрасываются, клиент при переподключении перечитает состояние.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	logger *slog.Logger
}

// NewBus создаёт шину событий.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]chan Event),
		logger: logger.With(slog.String("component", "events.bus")),
	}
}

// Subscribe регистрирует подписчика. Возвращает канал событий
// и функцию отписки. Канал закрывается при отписке.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 8)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish рассылает событие всем подписчикам без блокировки.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Подписчик не успевает читать — событие отброшено
			b.logger.Debug("Событие отброшено: подписчик не успевает",
				slog.Int("subscriber", id),
				slog.String("event", ev.Name),
			)
		}
	}
}

// Subscribers возвращает текущее число подписчиков.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
