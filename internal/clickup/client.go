package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrNoTasks — список не содержит задач.
var ErrNoTasks = errors.New("в списке нет задач")

// UpstreamError — ошибка, возвращённая ClickUp API.
type UpstreamError struct {
	StatusCode int
	Message    string
	Ecode      string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ClickUp вернул статус %d: %s (%s)", e.StatusCode, e.Message, e.Ecode)
}

// statusCacheTTL — время жизни кэша статусов списка.
// Статусы меняются редко, а запрашиваются на каждое создание задачи.
const statusCacheTTL = 5 * time.Minute

// Client — HTTP-клиент ClickUp API v2.
// API-ключ не хранится в клиенте: он читается из конфигурации
// интеграции на каждый вызов и передаётся параметром.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	statusCache *lru.LRU[string, []Status]
	logger      *slog.Logger
}

// New создаёт клиент ClickUp.
// baseURL — без завершающего слэша (https://api.clickup.com/api/v2).
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		statusCache: lru.NewLRU[string, []Status](64, nil, statusCacheTTL),
		logger:      logger.With(slog.String("component", "clickup_client")),
	}
}

// GetListStatuses возвращает статусы списка.
// Результат кэшируется на statusCacheTTL.
func (c *Client) GetListStatuses(ctx context.Context, apiKey, listID string) ([]Status, error) {
	if statuses, ok := c.statusCache.Get(listID); ok {
		return statuses, nil
	}

	var list listResponse
	if err := c.get(ctx, apiKey, "/list/"+listID, &list); err != nil {
		return nil, err
	}

	c.statusCache.Add(listID, list.Statuses)
	return list.Statuses, nil
}

// GetTasks возвращает задачи списка.
func (c *Client) GetTasks(ctx context.Context, apiKey, listID string) ([]Task, error) {
	var resp tasksResponse
	if err := c.get(ctx, apiKey, "/list/"+listID+"/task", &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// GetFirstTask возвращает первую задачу списка (проба limit=1).
// ErrNoTasks, если список пуст.
func (c *Client) GetFirstTask(ctx context.Context, apiKey, listID string) (*Task, error) {
	var resp tasksResponse
	if err := c.get(ctx, apiKey, "/list/"+listID+"/task?limit=1", &resp); err != nil {
		return nil, err
	}
	tasks := resp.Tasks
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}
	return &tasks[0], nil
}

// CreateTask создаёт задачу в списке.
func (c *Client) CreateTask(ctx context.Context, apiKey, listID string, task *CreateTaskRequest) (*Task, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("сериализация задачи: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/list/"+listID+"/task", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса CreateTask: %w", err)
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос CreateTask: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var created Task
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("декодирование созданной задачи: %w", err)
	}

	c.logger.Info("Задача создана в ClickUp",
		slog.String("task_id", created.ID),
		slog.String("list_id", listID),
	)
	return &created, nil
}

// get выполняет авторизованный GET и декодирует JSON-ответ.
func (c *Client) get(ctx context.Context, apiKey, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("создание запроса %s: %w", path, err)
	}
	req.Header.Set("Authorization", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s: %w", path, err)
	}
	return nil
}

// checkResponse превращает не-2xx ответ в UpstreamError.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	upErr := &UpstreamError{StatusCode: resp.StatusCode, Message: string(body)}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Err != "" {
		upErr.Message = apiErr.Err
		upErr.Ecode = apiErr.Ecode
	}
	return upErr
}
