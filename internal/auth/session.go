package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName — имя сессионной cookie.
const SessionCookieName = "flowcenter_session"

// Ошибки сессий.
var (
	// ErrNoSession — сессионная cookie отсутствует.
	ErrNoSession = errors.New("сессия отсутствует")
	// ErrInvalidSession — токен повреждён, подделан или истёк.
	ErrInvalidSession = errors.New("недействительная сессия")
)

// Claims — полезная нагрузка сессионного JWT.
// В токене хранится только идентификатор профиля: роль и доступы
// читаются из БД на каждый запрос, чтобы изменения применялись сразу.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionManager выпускает и проверяет сессионные JWT (HS256)
// и управляет сессионной cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessionManager создаёт менеджер сессий.
func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Issue выпускает подписанный токен для профиля.
func (m *SessionManager) Issue(userID string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи сессионного токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет токен и возвращает идентификатор профиля.
func (m *SessionManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	if claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}

// SetCookie выпускает токен и устанавливает сессионную cookie.
func (m *SessionManager) SetCookie(w http.ResponseWriter, userID string) error {
	token, err := m.Issue(userID, time.Now())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie удаляет сессионную cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserIDFromRequest извлекает и проверяет сессию из запроса.
// Возвращает идентификатор профиля или ErrNoSession/ErrInvalidSession.
func (m *SessionManager) UserIDFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", ErrNoSession
	}
	return m.Verify(cookie.Value)
}
