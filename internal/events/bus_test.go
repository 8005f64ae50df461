package events

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(testLogger())

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Publish(Event{Name: ModulesUpdated, UserID: "user-1"})

	select {
	case ev := <-ch:
		if ev.Name != ModulesUpdated || ev.UserID != "user-1" {
			t.Errorf("получено событие %+v, ожидалось modules-updated/user-1", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("событие не доставлено подписчику")
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := NewBus(testLogger())

	ch1, unsub1 := bus.Subscribe()
	ch2, unsub2 := bus.Subscribe()
	defer unsub1()
	defer unsub2()

	if bus.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, ожидалось 2", bus.Subscribers())
	}

	bus.Publish(Event{Name: ModulesUpdated})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Errorf("подписчик %d не получил событие", i+1)
		}
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(testLogger())

	ch, unsubscribe := bus.Subscribe()
	unsubscribe()

	if _, open := <-ch; open {
		t.Error("канал должен быть закрыт после отписки")
	}
	if bus.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, ожидалось 0", bus.Subscribers())
	}

	// Повторная отписка — no-op
	unsubscribe()
}

func TestBusPublishNonBlocking(t *testing.T) {
	bus := NewBus(testLogger())

	// Подписчик, который никогда не читает
	_, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		// Больше ёмкости буфера канала
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Name: ModulesUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish заблокировался на медленном подписчике")
	}
}
