package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() ошибка: %v", err)
	}
	if !CheckPassword(hash, "correct-horse") {
		t.Error("CheckPassword() должен принять верный пароль")
	}
	if CheckPassword(hash, "wrong-horse") {
		t.Error("CheckPassword() должен отклонить неверный пароль")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrWeakPassword {
		t.Errorf("HashPassword() короткого пароля: ошибка = %v, ожидалось ErrWeakPassword", err)
	}
}

func TestSessionIssueVerify(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	token, err := m.Issue("user-123", time.Now())
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() ошибка: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, ожидалось user-123", userID)
	}
}

func TestSessionVerify_Expired(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	// Токен, выпущенный два часа назад с TTL 1h
	token, err := m.Issue("user-123", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}

	if _, err := m.Verify(token); err != ErrInvalidSession {
		t.Errorf("Verify() истёкшего токена: ошибка = %v, ожидалось ErrInvalidSession", err)
	}
}

func TestSessionVerify_WrongSecret(t *testing.T) {
	m1 := NewSessionManager("secret-one", time.Hour, false)
	m2 := NewSessionManager("secret-two", time.Hour, false)

	token, _ := m1.Issue("user-123", time.Now())
	if _, err := m2.Verify(token); err != ErrInvalidSession {
		t.Errorf("Verify() токена с чужой подписью: ошибка = %v, ожидалось ErrInvalidSession", err)
	}
}

func TestSessionVerify_Garbage(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := m.Verify(token); err != ErrInvalidSession {
			t.Errorf("Verify(%q): ошибка = %v, ожидалось ErrInvalidSession", token, err)
		}
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	if err := m.SetCookie(rec, "user-123"); err != nil {
		t.Fatalf("SetCookie() ошибка: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("количество cookie = %d, ожидалось 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName {
		t.Errorf("имя cookie = %q, ожидалось %q", c.Name, SessionCookieName)
	}
	if !c.HttpOnly {
		t.Error("cookie должна быть HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)

	userID, err := m.UserIDFromRequest(req)
	if err != nil {
		t.Fatalf("UserIDFromRequest() ошибка: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, ожидалось user-123", userID)
	}
}

func TestUserIDFromRequest_NoCookie(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := m.UserIDFromRequest(req); err != ErrNoSession {
		t.Errorf("UserIDFromRequest() без cookie: ошибка = %v, ожидалось ErrNoSession", err)
	}
}

func TestClearCookie(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	m.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("ClearCookie() должен выставить MaxAge=-1: %+v", cookies)
	}
}
