// Пакет mailer — отправка транзакционных писем через Resend API.
// Используется для писем сброса пароля. Без API-ключа работает
// в режиме заглушки: ссылка сброса пишется в лог.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const resendAPIURL = "https://api.resend.com/emails"

// Mailer отправляет письма.
type Mailer interface {
	// SendPasswordReset отправляет письмо со ссылкой сброса пароля.
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// ResendMailer — клиент Resend API.
type ResendMailer struct {
	apiKey     string
	from       string
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewResend создаёт клиент Resend.
func NewResend(apiKey, from string, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey:     apiKey,
		from:       from,
		apiURL:     resendAPIURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With(slog.String("component", "mailer")),
	}
}

// sendRequest — payload POST /emails.
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendPasswordReset отправляет письмо со ссылкой сброса пароля.
func (m *ResendMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	payload := sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "FlowCenter — redefinição de senha",
		HTML: fmt.Sprintf(
			`<p>Recebemos uma solicitação para redefinir sua senha.</p>`+
				`<p><a href="%s">Clique aqui para criar uma nova senha</a></p>`+
				`<p>Se você não solicitou, ignore este e-mail.</p>`,
			resetURL),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("сериализация письма: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса Resend: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос к Resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("Resend вернул статус %d: %s", resp.StatusCode, string(respBody))
	}

	m.logger.Info("Письмо сброса пароля отправлено", slog.String("to", to))
	return nil
}

// LogMailer — заглушка без внешнего API: ссылка сброса пишется в лог.
// Используется, когда FC_RESEND_API_KEY не задан.
type LogMailer struct {
	logger *slog.Logger
}

// NewLog создаёт заглушку мейлера.
func NewLog(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(slog.String("component", "mailer"))}
}

// SendPasswordReset пишет ссылку сброса в лог вместо отправки письма.
func (m *LogMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.logger.Warn("Resend не настроен, письмо не отправлено",
		slog.String("to", to),
		slog.String("reset_url", resetURL),
	)
	return nil
}
