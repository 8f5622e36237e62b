package folio_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/eringen/folio"
	"github.com/eringen/folio/views"
)

func newServer(t *testing.T, cfg folio.SiteConfig, opts ...folio.Option) *folio.App {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "https://notes.example"
	}
	opts = append([]folio.Option{folio.WithContentFS(siteFS(t)), folio.WithLogger(quietLogger())}, opts...)
	app, err := folio.New(cfg, views.Funcs(), opts...)
	require.NoError(t, err)
	require.NoError(t, app.Setup())
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func newsletterServer(t *testing.T) *folio.App {
	t.Helper()
	store, err := folio.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return newServer(t, folio.SiteConfig{
		NewsletterEnabled: true,
		SessionSecret:     "0123456789abcdef0123456789abcdef",
	}, folio.WithStore(store))
}

func do(app *folio.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *folio.App, target string) *httptest.ResponseRecorder {
	return do(app, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestServerPages(t *testing.T) {
	app := newServer(t, folio.SiteConfig{Name: "Field Notes", Redirects: []string{"first"}})

	tests := []struct {
		target string
		code   int
		body   string
	}{
		{"/", http.StatusOK, "Second Post"},
		{"/articles/", http.StatusOK, "First Post"},
		{"/articles/second/", http.StatusOK, "<title>Second Post | Field Notes</title>"},
		{"/articles/first/", http.StatusOK, "Hello from the first post."},
		{"/about/", http.StatusOK, "Just me."},
		{"/articles/undated/", http.StatusNotFound, "Page not found"},
		{"/articles/wip/", http.StatusNotFound, "Page not found"},
		{"/nothing-here/", http.StatusNotFound, "Page not found"},
		{"/rss.xml", http.StatusOK, "<title>Field Notes RSS Feed</title>"},
		{"/sitemap.xml", http.StatusOK, "<loc>https://notes.example/articles/first/</loc>"},
		{"/robots.txt", http.StatusOK, "Sitemap: https://notes.example/sitemap.xml"},
		{"/public/style.css", http.StatusOK, ""},
		{"/public/notes.txt", http.StatusOK, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(app, tt.target)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestServerTagFilter(t *testing.T) {
	app := newServer(t, folio.SiteConfig{})

	rec := get(app, "/articles/?tag=web")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Second Post")
	assert.NotContains(t, body, "First Post")
	assert.Contains(t, body, `class="tag active" href="/articles/?tag=web"`)
}

func TestServerRedirects(t *testing.T) {
	app := newServer(t, folio.SiteConfig{Redirects: []string{"first"}})

	rec := get(app, "/first/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/articles/first/", rec.Header().Get("Location"))

	rec = get(app, "/articles/second")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/articles/second/", rec.Header().Get("Location"))
}

func TestServerHeaders(t *testing.T) {
	app := newServer(t, folio.SiteConfig{})

	rec := get(app, "/rss.xml")
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	rec = get(app, "/")
	assert.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "_csrf=")
}

func TestServerMetrics(t *testing.T) {
	app := newServer(t, folio.SiteConfig{})
	require.Equal(t, http.StatusOK, get(app, "/").Code)

	rec := get(app, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "folio_articles 2")
	assert.Contains(t, body, "folio_articles_skipped 1")
	assert.Contains(t, body, "folio_pages 1")
	assert.Contains(t, body, "folio_http_requests_total")
}

func TestServerNewsletterAPI(t *testing.T) {
	app := newsletterServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(app, req)
	}

	rec := post(`{"email":"Reader@Example.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"subscribed","message":"Thanks for subscribing!"}`, rec.Body.String())

	rec = post(`{"email":"reader@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"duplicate"`)

	rec = post(`{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalid"`)

	n, err := app.Store.CountSubscribers()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestServerNewsletterRateLimit(t *testing.T) {
	app := newsletterServer(t)

	var codes []int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(`{"email":"same@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		codes = append(codes, do(app, req).Code)
	}
	assert.Equal(t, []int{
		http.StatusCreated,
		http.StatusConflict, http.StatusConflict, http.StatusConflict, http.StatusConflict,
		http.StatusTooManyRequests,
	}, codes)
}

func TestServerNewsletterFormFlashes(t *testing.T) {
	app := newsletterServer(t)

	form := url.Values{"email": {"reader@example.com"}, "_csrf": {"form-token"}}
	req := httptest.NewRequest(http.MethodPost, "/newsletter/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://notes.example/articles/second/")
	req.Host = "notes.example"
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "form-token"})
	rec := do(app, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/articles/second/", rec.Header().Get("Location"))

	next := httptest.NewRequest(http.MethodGet, "/articles/second/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	page := do(app, next)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `<p class="flash" role="status">Thanks for subscribing!</p>`)
	assert.Contains(t, page.Body.String(), `name="_csrf" value="form-token"`)
}

func TestServerNewsletterFormRequiresCSRF(t *testing.T) {
	app := newsletterServer(t)

	form := url.Values{"email": {"reader@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/newsletter/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(app, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	n, err := app.Store.CountSubscribers()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServerUnsubscribe(t *testing.T) {
	app := newsletterServer(t)
	sub, err := app.Store.Subscribe("reader@example.com")
	require.NoError(t, err)

	rec := get(app, "/newsletter/unsubscribe/"+sub.Token+"/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have been unsubscribed")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = get(app, "/newsletter/unsubscribe/unknown-token/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerCustomRoutes(t *testing.T) {
	app := newServer(t, folio.SiteConfig{}, folio.WithCustomRoutes(func(a *folio.App) {
		a.Echo.GET("/healthz", func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		a.Echo.GET("/status/:name", func(c echo.Context) error {
			return c.String(http.StatusOK, c.Param("name"))
		})
	}))

	rec := get(app, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(app, "/status/db")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "db", rec.Body.String())

	rec = get(app, "/about")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/about/", rec.Header().Get("Location"))
}

func TestAppCloseStopsLimiter(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	store, err := folio.NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	app, err := folio.New(folio.SiteConfig{NewsletterEnabled: true, SessionSecret: "secret"}, views.Funcs(),
		folio.WithContentFS(siteFS(t)), folio.WithLogger(quietLogger()), folio.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, app.Setup())
	require.NoError(t, app.Close())
}
