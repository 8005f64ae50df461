// Пакет config — загрузка и валидация конфигурации FlowCenter
// из переменных окружения (с поддержкой .env в dev через godotenv).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Режимы извлечения данных из ответа ИИ.
const (
	ExtractorTolerant = "tolerant"
	ExtractorStrict   = "strict"
)

// Config содержит все параметры конфигурации FlowCenter.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Разрешённые CORS origins (консоль в dev живёт на другом origin)
	CORSOrigins []string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Сессии ---

	// Секрет для подписи сессионных JWT (HS256)
	SessionSecret string
	// Время жизни сессии
	SessionTTL time.Duration
	// Secure flag для session cookie
	SecureCookie bool

	// --- ClickUp ---

	// Базовый URL ClickUp API
	ClickUpAPIURL string
	// ID ответственного по умолчанию (когда имя не найдено в assignee_map)
	DefaultAssigneeID int64
	// Часовой пояс конвертации дат задач в epoch-ms.
	// Фиксируется явно: значение уходит во внешний API, полагаться
	// на локальную зону процесса нельзя.
	Timezone *time.Location

	// --- Extractor ---

	// Режим извлечения: tolerant (деградация до сырого текста)
	// или strict (ошибка при несоответствии схеме)
	ExtractorMode string

	// --- Почта (сброс пароля) ---

	// API-ключ Resend (пустой — письма не отправляются, ссылка в лог)
	ResendAPIKey string
	// Адрес отправителя
	MailFrom string
	// URL, на который ведёт ссылка из письма сброса пароля
	ResetRedirectURL string

	// --- Встраиваемый портал ---

	// URL внешнего портала, проксируемого для iframe
	PortalURL string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	// .env — только для dev, отсутствие файла не ошибка
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FC_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("FC_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("FC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// FC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("FC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("FC_LOG_LEVEL: %w", err)
	}

	// FC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// FC_CORS_ORIGINS — разрешённые origins (по умолчанию http://localhost:3000)
	cfg.CORSOrigins = parseCSV(getEnvDefault("FC_CORS_ORIGINS", "http://localhost:3000"))

	// --- PostgreSQL ---

	// FC_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("FC_DB_HOST")
	if err != nil {
		return nil, err
	}

	// FC_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("FC_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("FC_DB_PORT: %w", err)
	}

	// FC_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("FC_DB_NAME")
	if err != nil {
		return nil, err
	}

	// FC_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("FC_DB_USER")
	if err != nil {
		return nil, err
	}

	// FC_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("FC_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// FC_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("FC_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("FC_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Сессии ---

	// FC_SESSION_SECRET — обязательный
	cfg.SessionSecret, err = getEnvRequired("FC_SESSION_SECRET")
	if err != nil {
		return nil, err
	}

	// FC_SESSION_TTL — время жизни сессии (по умолчанию 24h)
	cfg.SessionTTL, err = getEnvDuration("FC_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("FC_SESSION_TTL: %w", err)
	}

	// FC_SECURE_COOKIE — Secure flag cookie (по умолчанию false, за TLS-терминацией выставить true)
	cfg.SecureCookie = getEnvDefault("FC_SECURE_COOKIE", "false") == "true"

	// --- ClickUp ---

	// FC_CLICKUP_API_URL — базовый URL ClickUp API
	cfg.ClickUpAPIURL = strings.TrimRight(
		getEnvDefault("FC_CLICKUP_API_URL", "https://api.clickup.com/api/v2"), "/")

	// FC_DEFAULT_ASSIGNEE_ID — ответственный по умолчанию
	defaultAssignee, err := getEnvInt("FC_DEFAULT_ASSIGNEE_ID", 49170204)
	if err != nil {
		return nil, fmt.Errorf("FC_DEFAULT_ASSIGNEE_ID: %w", err)
	}
	cfg.DefaultAssigneeID = int64(defaultAssignee)

	// FC_TIMEZONE — зона конвертации дат (по умолчанию America/Sao_Paulo)
	tzName := getEnvDefault("FC_TIMEZONE", "America/Sao_Paulo")
	cfg.Timezone, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("FC_TIMEZONE: неизвестная зона %q: %w", tzName, err)
	}

	// --- Extractor ---

	// FC_EXTRACTOR_MODE — режим извлечения (по умолчанию tolerant)
	cfg.ExtractorMode = getEnvDefault("FC_EXTRACTOR_MODE", ExtractorTolerant)
	if cfg.ExtractorMode != ExtractorTolerant && cfg.ExtractorMode != ExtractorStrict {
		return nil, fmt.Errorf("FC_EXTRACTOR_MODE: недопустимое значение %q, допустимые: %s, %s",
			cfg.ExtractorMode, ExtractorTolerant, ExtractorStrict)
	}

	// --- Почта ---

	// FC_RESEND_API_KEY — опциональный
	cfg.ResendAPIKey = getEnvDefault("FC_RESEND_API_KEY", "")

	// FC_MAIL_FROM — адрес отправителя
	cfg.MailFrom = getEnvDefault("FC_MAIL_FROM", "FlowCenter <noreply@flowcenter.app>")

	// FC_RESET_REDIRECT_URL — ссылка из письма сброса пароля
	cfg.ResetRedirectURL = getEnvDefault("FC_RESET_REDIRECT_URL", "http://localhost:3000/update-password")

	// --- Портал ---

	// FC_PORTAL_URL — внешний портал для iframe
	cfg.PortalURL = getEnvDefault("FC_PORTAL_URL", "https://sacmais.com.br")

	// --- Graceful shutdown ---

	// FC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("FC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
