package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testProxy(t *testing.T, backend http.HandlerFunc) (*ProxyHandler, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	h, err := NewProxyHandler(srv.URL, logger)
	if err != nil {
		t.Fatalf("NewProxyHandler() ошибка: %v", err)
	}
	return h, srv
}

func TestProxy_StripsRoutePrefix(t *testing.T) {
	var gotPath, gotQuery string
	h, _ := testProxy(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})

	// Корень прокси — корень портала
	rec := httptest.NewRecorder()
	h.HandleProxy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/proxy", nil))
	if gotPath != "/" {
		t.Errorf("путь на портале = %q, ожидался /", gotPath)
	}

	// Вложенный путь срезается до подпути портала, query сохраняется
	rec = httptest.NewRecorder()
	h.HandleProxy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/proxy/painel/relatorios?mes=5", nil))
	if gotPath != "/painel/relatorios" {
		t.Errorf("путь на портале = %q, ожидался /painel/relatorios", gotPath)
	}
	if gotQuery != "mes=5" {
		t.Errorf("query на портале = %q, ожидался mes=5", gotQuery)
	}
}

func TestProxy_StripsCookiesAndFrameHeaders(t *testing.T) {
	var gotCookie string
	h, _ := testProxy(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/proxy", nil)
	req.AddCookie(&http.Cookie{Name: "flowcenter_session", Value: "secret"})

	rec := httptest.NewRecorder()
	h.HandleProxy(rec, req)

	if gotCookie != "" {
		t.Errorf("cookie консоли не должна уходить на портал: %q", gotCookie)
	}
	if rec.Header().Get("X-Frame-Options") != "" || rec.Header().Get("Content-Security-Policy") != "" {
		t.Errorf("анти-iframe заголовки должны срезаться: %v", rec.Header())
	}
}

func TestProxy_PortalDown502(t *testing.T) {
	h, srv := testProxy(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	rec := httptest.NewRecorder()
	h.HandleProxy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/proxy", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("статус = %d, ожидался 502", rec.Code)
	}
}
