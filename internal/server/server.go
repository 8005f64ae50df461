// Пакет server — HTTP-сервер FlowCenter с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/api/handlers"
	"github.com/flowcenter/flowcenter/internal/api/middleware"
	"github.com/flowcenter/flowcenter/internal/config"
	"github.com/flowcenter/flowcenter/internal/domain/modules"
)

// Handlers — набор HTTP-обработчиков, монтируемых на маршруты.
type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Navigation *handlers.NavigationHandler
	AdminUsers *handlers.AdminUsersHandler
	ClickUp    *handlers.ClickUpHandler
	Tasks      *handlers.TasksHandler
	Events     *handlers.EventsHandler
	Proxy      *handlers.ProxyHandler
}

// Server — HTTP-сервер FlowCenter.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, g *guard.Guard, h *Handlers) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health и metrics — без защиты, проверяются Kubernetes напрямую
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		// Публичные маршруты аутентификации
		r.Post("/auth/register", h.Auth.HandleRegister)
		r.Post("/auth/login", h.Auth.HandleLogin)
		r.Post("/auth/logout", h.Auth.HandleLogout)
		r.Post("/auth/reset", h.Auth.HandleRequestReset)
		r.Post("/auth/reset/confirm", h.Auth.HandleConfirmReset)

		// Маршруты, требующие сессии
		r.Group(func(r chi.Router) {
			r.Use(g.RequireAPI(guard.Authenticated()))

			r.Get("/profile", h.Auth.HandleGetProfile)
			r.Put("/profile", h.Auth.HandleUpdateProfile)
			r.Put("/auth/password", h.Auth.HandleChangePassword)
			r.Get("/navigation", h.Navigation.HandleNavigation)
			r.Get("/events/modules", h.Events.HandleModules)
			r.Get("/clickup/test", h.ClickUp.HandleProbe)
		})

		// Конвейер задач — нужен доступ к модулю Atendimentos
		r.Group(func(r chi.Router) {
			r.Use(g.RequireAPI(guard.Authenticated(), guard.ModuleAccess(modules.IDTasks)))

			r.Post("/tasks", h.Tasks.HandleSubmit)
			r.Post("/tasks/extract", h.Tasks.HandleExtract)
		})

		// Встраиваемый портал — браузерный вариант защиты:
		// iframe при провале условия уходит на страницу консоли
		r.Group(func(r chi.Router) {
			r.Use(g.Protect(guard.Authenticated(), guard.ModuleAccess(modules.IDPortal)))

			r.Get("/proxy", h.Proxy.HandleProxy)
			r.Get("/proxy/*", h.Proxy.HandleProxy)
		})

		// Администрирование
		r.Group(func(r chi.Router) {
			r.Use(g.RequireAPI(guard.Authenticated(), guard.AdminRole()))

			r.Get("/modules", h.AdminUsers.HandleCatalog)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", h.AdminUsers.HandleList)
				r.Get("/users/{id}", h.AdminUsers.HandleGet)
				r.Put("/users/{id}", h.AdminUsers.HandleUpdate)
				r.Put("/users/{id}/role", h.AdminUsers.HandleUpdateRole)
				r.Put("/users/{id}/custom-id", h.AdminUsers.HandleSetCustomID)
				r.Get("/users/{id}/modules", h.AdminUsers.HandleListUserModules)
				r.Put("/users/{id}/modules/{moduleID}", h.AdminUsers.HandleSetUserModule)

				r.Get("/clickup-config", h.ClickUp.HandleGetConfig)
				r.Put("/clickup-config", h.ClickUp.HandleSaveConfig)
				r.Get("/clickup-config/test", h.ClickUp.HandleTestConfig)

				r.Get("/assignees", h.ClickUp.HandleListAssignees)
				r.Put("/assignees", h.ClickUp.HandleUpsertAssignee)
				r.Delete("/assignees/{id}", h.ClickUp.HandleDeleteAssignee)
			})
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
