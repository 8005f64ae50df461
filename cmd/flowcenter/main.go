// Точка входа FlowCenter — административная консоль и шлюз задач.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт репозитории, сервисный слой и API handlers, инициализирует
// guard доступа и ClickUp-клиент, запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/flowcenter/flowcenter/internal/api/guard"
	"github.com/flowcenter/flowcenter/internal/api/handlers"
	"github.com/flowcenter/flowcenter/internal/auth"
	"github.com/flowcenter/flowcenter/internal/clickup"
	"github.com/flowcenter/flowcenter/internal/config"
	"github.com/flowcenter/flowcenter/internal/database"
	"github.com/flowcenter/flowcenter/internal/events"
	"github.com/flowcenter/flowcenter/internal/extractor"
	"github.com/flowcenter/flowcenter/internal/mailer"
	"github.com/flowcenter/flowcenter/internal/repository"
	"github.com/flowcenter/flowcenter/internal/server"
	"github.com/flowcenter/flowcenter/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("FlowCenter запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("extractor_mode", cfg.ExtractorMode),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Repositories
	profileRepo := repository.NewProfileRepository(pool)
	userModuleRepo := repository.NewUserModuleRepository(pool)
	clickupConfigRepo := repository.NewClickUpConfigRepository(pool)
	assigneeRepo := repository.NewAssigneeMapRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Сессии и почта
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookie)

	var mail mailer.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResend(cfg.ResendAPIKey, cfg.MailFrom, logger)
		logger.Info("Resend-мейлер инициализирован", slog.String("from", cfg.MailFrom))
	} else {
		mail = mailer.NewLog(logger)
		logger.Warn("FC_RESEND_API_KEY не задан, письма сброса пароля пишутся в лог")
	}

	// 7. ClickUp-клиент и извлекатель черновиков
	cuClient := clickup.New(cfg.ClickUpAPIURL, logger)

	ext, err := extractor.New(cfg.ExtractorMode)
	if err != nil {
		logger.Error("Ошибка создания извлекателя", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Шина событий доступа (SSE)
	bus := events.NewBus(logger)

	// 9. Services
	profilesSvc := service.NewProfileService(
		profileRepo, resetRepo,
		mail, cfg.ResetRedirectURL,
		logger,
	)
	accessSvc := service.NewAccessService(userModuleRepo, bus, logger)
	clickupConfigSvc := service.NewClickUpConfigService(
		clickupConfigRepo, txRunner, cuClient,
		logger,
	)
	tasksSvc := service.NewTaskService(
		clickupConfigSvc, assigneeRepo, cuClient, ext,
		cfg.DefaultAssigneeID, cfg.Timezone,
		logger,
	)
	assigneesSvc := service.NewAssigneeService(assigneeRepo, logger)

	// 10. Guard доступа
	g := guard.New(sessions, profilesSvc, accessSvc, logger)

	// 11. Readiness checker и handlers
	pgChecker := database.NewReadinessChecker(pool)

	proxyHandler, err := handlers.NewProxyHandler(cfg.PortalURL, logger)
	if err != nil {
		logger.Error("Ошибка создания прокси портала",
			slog.String("portal_url", cfg.PortalURL),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	h := &server.Handlers{
		Health:     handlers.NewHealthHandler(pgChecker),
		Auth:       handlers.NewAuthHandler(profilesSvc, sessions, logger),
		Navigation: handlers.NewNavigationHandler(accessSvc, logger),
		AdminUsers: handlers.NewAdminUsersHandler(profilesSvc, accessSvc, logger),
		ClickUp:    handlers.NewClickUpHandler(clickupConfigSvc, assigneesSvc, logger),
		Tasks:      handlers.NewTasksHandler(tasksSvc, logger),
		Events:     handlers.NewEventsHandler(bus, logger),
		Proxy:      proxyHandler,
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, g, h)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("FlowCenter остановлен")
}
