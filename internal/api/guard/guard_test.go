package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/flowcenter/flowcenter/internal/auth"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/domain/modules"
	"github.com/flowcenter/flowcenter/internal/service"
)

// fakeProfiles — заглушка ProfileGetter.
type fakeProfiles struct {
	profiles map[string]*model.Profile
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, service.ErrNotFound
}

// fakeAccess — заглушка AccessChecker.
type fakeAccess struct {
	enabled map[string]map[int]bool
	err     error
}

func (f *fakeAccess) HasAccess(_ context.Context, p *model.Profile, moduleID int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if m, ok := modules.ByID(moduleID); ok && m.AdminOnly && !p.IsAdmin() {
		return false, nil
	}
	return f.enabled[p.ID][moduleID], nil
}

func testGuard(t *testing.T) (*Guard, *auth.SessionManager) {
	t.Helper()

	sessions := auth.NewSessionManager("test-secret", time.Hour, false)
	profiles := &fakeProfiles{profiles: map[string]*model.Profile{
		"admin-1": {ID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin},
		"user-1":  {ID: "user-1", Email: "user@example.com", Role: model.RoleUser},
	}}
	access := &fakeAccess{enabled: map[string]map[int]bool{
		"admin-1": {modules.IDAdmin: true},
		"user-1":  {modules.IDTasks: true},
	}}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return New(sessions, profiles, access, logger), sessions
}

// okHandler пишет 200 и email профиля из контекста.
func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := ProfileFromContext(r.Context())
		if p == nil {
			t.Error("профиль должен быть в контексте защищённого маршрута")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithSession(t *testing.T, sessions *auth.SessionManager, userID string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if userID != "" {
		token, err := sessions.Issue(userID, time.Now())
		if err != nil {
			t.Fatalf("Issue() ошибка: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	return req
}

func TestProtect_NoSessionRedirectsToLogin(t *testing.T) {
	g, sessions := testGuard(t)

	rec := httptest.NewRecorder()
	g.Protect(Authenticated())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, ""))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Errorf("статус = %d, Location = %q, ожидался редирект на /login", rec.Code, rec.Header().Get("Location"))
	}
}

func TestProtect_AuthenticatedPasses(t *testing.T) {
	g, sessions := testGuard(t)

	rec := httptest.NewRecorder()
	g.Protect(Authenticated())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
}

func TestProtect_OrphanSessionClearsCookie(t *testing.T) {
	g, sessions := testGuard(t)

	// Сессия валидна, но профиль удалён
	rec := httptest.NewRecorder()
	g.Protect(Authenticated())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "ghost"))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Errorf("осиротевшая сессия должна вести на /login: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.SessionCookieName || cookies[0].MaxAge != -1 {
		t.Errorf("cookie должна быть удалена: %+v", cookies)
	}
}

func TestProtect_AdminRoleRedirectsUserToDashboard(t *testing.T) {
	g, sessions := testGuard(t)

	rec := httptest.NewRecorder()
	g.Protect(AdminRole())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != DashboardPath {
		t.Errorf("не-админ должен уходить на /dashboard: %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestProtect_AdminRolePassesAdmin(t *testing.T) {
	g, sessions := testGuard(t)

	rec := httptest.NewRecorder()
	g.Protect(AdminRole())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "admin-1"))

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
}

func TestProtect_ModuleAccessRedirectsToUnauthorized(t *testing.T) {
	g, sessions := testGuard(t)

	// У user-1 включён только модуль 3
	rec := httptest.NewRecorder()
	g.Protect(ModuleAccess(modules.IDPortal))(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != UnauthorizedPath {
		t.Errorf("запрет модуля должен вести на /unauthorized: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	g.Protect(ModuleAccess(modules.IDTasks))(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))
	if rec.Code != http.StatusOK {
		t.Errorf("включённый модуль должен пропускать: %d", rec.Code)
	}
}

func TestProtect_AccessCheckErrorRedirectsToLogin(t *testing.T) {
	// Ошибка разрешения условия — отказ в доступе и /login,
	// а не fallback условия
	sessions := auth.NewSessionManager("test-secret", time.Hour, false)
	profiles := &fakeProfiles{profiles: map[string]*model.Profile{
		"user-1": {ID: "user-1", Email: "user@example.com", Role: model.RoleUser},
	}}
	access := &fakeAccess{err: errors.New("обрыв соединения с БД")}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	g := New(sessions, profiles, access, logger)

	rec := httptest.NewRecorder()
	g.Protect(ModuleAccess(modules.IDTasks))(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Errorf("ошибка проверки условия должна вести на /login: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	g.RequireAPI(ModuleAccess(modules.IDTasks))(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", rec.Code)
	}
}

func TestRequireAPI_NoSession401(t *testing.T) {
	g, sessions := testGuard(t)

	rec := httptest.NewRecorder()
	g.RequireAPI(Authenticated())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, ""))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", rec.Code)
	}
}

func TestRequireAPI_Forbidden403(t *testing.T) {
	g, sessions := testGuard(t)

	rec := httptest.NewRecorder()
	g.RequireAPI(AdminRole())(okHandler(t)).ServeHTTP(rec, requestWithSession(t, sessions, "user-1"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("статус = %d, ожидался 403", rec.Code)
	}
}

func TestRequireAPI_ConditionsCombine(t *testing.T) {
	g, sessions := testGuard(t)

	// Админ проходит AdminRole + ModuleAccess(Admin)
	rec := httptest.NewRecorder()
	g.RequireAPI(AdminRole(), ModuleAccess(modules.IDAdmin))(okHandler(t)).
		ServeHTTP(rec, requestWithSession(t, sessions, "admin-1"))

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
}
