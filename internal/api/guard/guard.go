// Пакет guard — параметризованная защита маршрутов.
//
// Условие доступа описывается значением Condition (Authenticated,
// AdminRole, ModuleAccess). Guard исполняет условия в двух вариантах:
//
//   - Protect: браузерный вариант, провал условия — редирект
//     (/login, /dashboard, /unauthorized);
//   - RequireAPI: JSON-вариант, провал условия — 401/403 в формате API.
//
// Роль и доступы читаются из БД на каждый запрос: изменения
// администратора применяются без повторного входа.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
	"github.com/flowcenter/flowcenter/internal/auth"
	"github.com/flowcenter/flowcenter/internal/domain/model"
	"github.com/flowcenter/flowcenter/internal/service"
)

// Маршруты редиректов браузерного варианта.
const (
	LoginPath        = "/login"
	DashboardPath    = "/dashboard"
	UnauthorizedPath = "/unauthorized"
)

// ProfileGetter возвращает профиль по идентификатору сессии.
type ProfileGetter interface {
	Get(ctx context.Context, id string) (*model.Profile, error)
}

// AccessChecker проверяет доступ профиля к модулю.
type AccessChecker interface {
	HasAccess(ctx context.Context, p *model.Profile, moduleID int) (bool, error)
}

// Guard — исполнитель условий доступа.
type Guard struct {
	sessions *auth.SessionManager
	profiles ProfileGetter
	access   AccessChecker
	logger   *slog.Logger
}

// New создаёт Guard.
func New(sessions *auth.SessionManager, profiles ProfileGetter, access AccessChecker, logger *slog.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		profiles: profiles,
		access:   access,
		logger:   logger.With(slog.String("component", "guard")),
	}
}

// Condition — условие доступа к маршруту.
type Condition struct {
	// check — проверка условия для аутентифицированного профиля.
	check func(ctx context.Context, g *Guard, p *model.Profile) (bool, error)
	// fallback — редирект браузерного варианта при провале.
	fallback string
}

// Authenticated — требуется действующая сессия.
// Самостоятельной проверки нет: аутентификация выполняется до
// любых условий. Условие существует, чтобы защитить маршрут,
// у которого других требований нет.
func Authenticated() Condition {
	return Condition{
		check:    func(context.Context, *Guard, *model.Profile) (bool, error) { return true, nil },
		fallback: LoginPath,
	}
}

// AdminRole — требуется роль admin.
// В браузерном варианте провал уводит на /dashboard.
func AdminRole() Condition {
	return Condition{
		check: func(_ context.Context, _ *Guard, p *model.Profile) (bool, error) {
			return p.IsAdmin(), nil
		},
		fallback: DashboardPath,
	}
}

// ModuleAccess — требуется включённый доступ к модулю.
// В браузерном варианте провал уводит на /unauthorized.
func ModuleAccess(moduleID int) Condition {
	return Condition{
		check: func(ctx context.Context, g *Guard, p *model.Profile) (bool, error) {
			return g.access.HasAccess(ctx, p, moduleID)
		},
		fallback: UnauthorizedPath,
	}
}

// ctxKey — ключ контекста для профиля.
type ctxKey struct{}

// ProfileFromContext возвращает профиль запроса, положенный Guard-ом.
// nil — маршрут не защищён.
func ProfileFromContext(ctx context.Context) *model.Profile {
	p, _ := ctx.Value(ctxKey{}).(*model.Profile)
	return p
}

// resolveProfile аутентифицирует запрос: проверяет сессию и
// загружает профиль. Сессия без профиля гасится — cookie удаляется.
func (g *Guard) resolveProfile(w http.ResponseWriter, r *http.Request) (*model.Profile, error) {
	userID, err := g.sessions.UserIDFromRequest(r)
	if err != nil {
		return nil, err
	}

	p, err := g.profiles.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Профиль удалён, сессия осиротела
			g.sessions.ClearCookie(w)
			return nil, auth.ErrInvalidSession
		}
		return nil, err
	}
	return p, nil
}

// Protect — браузерный вариант защиты: провал условия — редирект.
func (g *Guard) Protect(conds ...Condition) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := g.resolveProfile(w, r)
			if err != nil {
				if errors.Is(err, auth.ErrNoSession) || errors.Is(err, auth.ErrInvalidSession) {
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				}
				g.logger.Error("Ошибка аутентификации", slog.String("error", err.Error()))
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			for _, cond := range conds {
				ok, err := cond.check(r.Context(), g, p)
				if err != nil {
					// Ошибка разрешения условия трактуется как отказ
					// в доступе и уводит на /login, без повтора
					g.logger.Error("Ошибка проверки условия доступа",
						slog.String("error", err.Error()),
						slog.String("user_id", p.ID),
					)
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				}
				if !ok {
					http.Redirect(w, r, cond.fallback, http.StatusSeeOther)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, p)))
		})
	}
}

// RequireAPI — JSON-вариант защиты: провал условия — 401/403.
func (g *Guard) RequireAPI(conds ...Condition) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := g.resolveProfile(w, r)
			if err != nil {
				if errors.Is(err, auth.ErrNoSession) || errors.Is(err, auth.ErrInvalidSession) {
					apierrors.Unauthorized(w, "требуется аутентификация")
					return
				}
				g.logger.Error("Ошибка аутентификации", slog.String("error", err.Error()))
				apierrors.InternalError(w, "внутренняя ошибка")
				return
			}

			for _, cond := range conds {
				ok, err := cond.check(r.Context(), g, p)
				if err != nil {
					// Ошибка разрешения условия трактуется как отказ в доступе
					g.logger.Error("Ошибка проверки условия доступа",
						slog.String("error", err.Error()),
						slog.String("user_id", p.ID),
					)
					apierrors.Unauthorized(w, "требуется аутентификация")
					return
				}
				if !ok {
					apierrors.Forbidden(w, "недостаточно прав")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, p)))
		})
	}
}
