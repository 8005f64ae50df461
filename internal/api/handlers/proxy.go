// proxy.go — реверс-прокси внешнего портала для встраивания в iframe.
// Портал запрещает прямое встраивание; прокси отдаёт его содержимое
// со своего origin и срезает анти-iframe заголовки.
package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	apierrors "github.com/flowcenter/flowcenter/internal/api/errors"
)

// proxyPrefix — префикс маршрута прокси, срезаемый перед пересылкой:
// GET /api/v1/proxy уходит на портал как GET /,
// GET /api/v1/proxy/x/y — как GET /x/y.
const proxyPrefix = "/api/v1/proxy"

// ProxyHandler — обработчик GET /api/v1/proxy.
type ProxyHandler struct {
	proxy  *httputil.ReverseProxy
	logger *slog.Logger
}

// NewProxyHandler создаёт прокси внешнего портала.
func NewProxyHandler(portalURL string, logger *slog.Logger) (*ProxyHandler, error) {
	target, err := url.Parse(portalURL)
	if err != nil {
		return nil, err
	}

	componentLogger := logger.With(slog.String("component", "proxy_handler"))

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			rest := strings.TrimPrefix(pr.In.URL.Path, proxyPrefix)
			if rest == "" {
				rest = "/"
			}
			pr.Out.URL.Path = rest
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.Out.Host = target.Host
			// Cookie консоли не утекают на внешний портал
			pr.Out.Header.Del("Cookie")
		},
		ModifyResponse: func(resp *http.Response) error {
			// Заголовки, запрещающие iframe, срезаются
			resp.Header.Del("X-Frame-Options")
			resp.Header.Del("Content-Security-Policy")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			componentLogger.Error("Ошибка проксирования портала", slog.String("error", err.Error()))
			apierrors.WriteError(w, http.StatusBadGateway, apierrors.CodePortalUnavailable, "портал недоступен")
		},
	}

	return &ProxyHandler{proxy: proxy, logger: componentLogger}, nil
}

// HandleProxy обрабатывает GET /api/v1/proxy.
func (h *ProxyHandler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	h.proxy.ServeHTTP(w, r)
}
