package folio

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const sessionName = "folio_session"

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.logger.Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(a.Metrics.middleware())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/") || c.Request().URL.Path == "/metrics"
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline' https://www.googletagmanager.com https://*.disqus.com https://*.disquscdn.com; style-src 'self' 'unsafe-inline' https://*.disquscdn.com; img-src 'self' https: data:; frame-src https://disqus.com; connect-src 'self' https://*.google-analytics.com https://*.disqus.com",
		HSTSMaxAge:            31536000,
	}))

	if a.Config.SessionSecret != "" {
		e.Use(session.Middleware(a.newSessionStore()))
	}

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		CookieHTTPOnly: true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			return skipTrailingSlash(c.Request().URL.Path) || routeWithoutSlash(c)
		},
	}))

	e.Use(cacheControlMiddleware)
}

func skipTrailingSlash(path string) bool {
	if strings.HasPrefix(path, "/public/") || strings.HasPrefix(path, "/api/") {
		return true
	}
	switch path {
	case "/sitemap.xml", "/rss.xml", "/robots.txt", "/metrics", "/favicon.ico", "/favicon.svg":
		return true
	}
	return false
}

// routeWithoutSlash reports whether the request matched a route registered
// without a trailing slash, such as one added through WithCustomRoutes.
// Wildcard routes still get the slash.
func routeWithoutSlash(c echo.Context) bool {
	p := c.Path()
	if p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, "*") {
		return false
	}
	return p == c.Request().URL.Path || strings.Contains(p, "/:")
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/sitemap.xml" || path == "/rss.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		case strings.HasPrefix(path, "/newsletter/") || strings.HasPrefix(path, "/api/") || path == "/metrics":
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			// Pages carry a per-visitor CSRF token and flashes.
			c.Response().Header().Set("Cache-Control", "private, no-cache")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// AddFlash queues a one-time message shown on the next rendered page.
func AddFlash(c echo.Context, msg string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.AddFlash(msg)
	return sess.Save(c.Request(), c.Response())
}

// Flashes pops the queued flash messages. Without a session it returns nil.
func Flashes(c echo.Context) []string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Warnf("folio: save session: %v", err)
	}
	return msgs
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
