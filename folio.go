// Package folio is a personal blog engine built with Go, Echo, and templ.
// It loads Markdown/MDX articles with front-matter from disk, renders them
// with goldmark, and publishes them either as a static site or through a
// preview server that also takes newsletter sign-ups.
//
// Users provide their own templ components via the ViewFuncs struct; the
// views package ships a default set.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/markdown"
)

// ViewFuncs holds the templ components the App calls when rendering pages.
// Each receives the shared Page state (site config, meta tags, CSRF token,
// flashes) plus its own content.
type ViewFuncs struct {
	Home        func(p Page, recent []RenderedArticle) templ.Component
	Articles    func(p Page, articles []RenderedArticle, tags []string, activeTag string) templ.Component
	Article     func(p Page, a RenderedArticle, newer, older *Article) templ.Component
	Page        func(p Page, page RenderedArticle) templ.Component
	NotFound    func(p Page) templ.Component
	ServerError func(p Page) templ.Component
}

// HomeArticles is the number of articles shown on the home page.
const HomeArticles = 5

// App wires together the content library, views, server and build.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Library *Library
	Metrics *Metrics
	Views   ViewFuncs

	logger       Logger
	contentFS    fs.FS
	articlesFS   fs.FS
	pagesFS      fs.FS
	staticFS     fs.FS
	renderer     *markdown.Renderer
	limiter      *RateLimiter
	customRoutes []func(*App)
	ownsStore    bool
	ready        bool
}

// New creates an App with the given configuration and views. Nothing is
// read from disk until the first load.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) (*App, error) {
	cfg.setDefaults()
	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		Metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = NewLogger("folio", false)
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	var err error
	if a.contentFS != nil {
		if a.articlesFS, err = fs.Sub(a.contentFS, cfg.ContentDir); err != nil {
			return nil, fmt.Errorf("folio: content dir: %w", err)
		}
		if a.pagesFS, err = fs.Sub(a.contentFS, cfg.PagesDir); err != nil {
			return nil, fmt.Errorf("folio: pages dir: %w", err)
		}
		if a.staticFS, err = fs.Sub(a.contentFS, cfg.StaticDir); err != nil {
			return nil, fmt.Errorf("folio: static dir: %w", err)
		}
	} else {
		a.articlesFS = os.DirFS(cfg.ContentDir)
		a.pagesFS = os.DirFS(cfg.PagesDir)
		a.staticFS = os.DirFS(cfg.StaticDir)
	}

	a.renderer = markdown.New(
		markdown.WithSiteURL(cfg.URL),
		markdown.WithImageRoot(a.staticFS, "/public/"),
		markdown.WithMaxImageWidth(cfg.MaxImageWidth),
	)
	a.Library = NewLibrary(a.ArticleLoader(), a.PageLoader(), a.renderer, cfg)
	a.Library.OnLoad = a.Metrics.observeLoad
	return a, nil
}

// Logger returns the App's logger.
func (a *App) Logger() Logger {
	return a.logger
}

// ArticleLoader returns a Loader over the articles directory.
func (a *App) ArticleLoader() *Loader {
	return NewLoader(a.articlesFS, LoaderConfig{
		RequireDate:   true,
		IncludeDrafts: a.Config.IncludeDrafts,
		Concurrency:   a.Config.ReadConcurrency,
		Logger:        a.logger,
	})
}

// PageLoader returns a Loader over the standalone pages directory.
func (a *App) PageLoader() *Loader {
	return NewLoader(a.pagesFS, LoaderConfig{
		IncludeDrafts: a.Config.IncludeDrafts,
		Concurrency:   a.Config.ReadConcurrency,
		Logger:        a.logger,
	})
}

// Setup opens the subscriber store when the newsletter is enabled and
// registers middleware and routes. Start calls it; tests call it directly
// and drive a.Echo with httptest.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.NewsletterEnabled {
		if a.Config.SessionSecret == "" {
			return errors.New("folio: SessionSecret is required when the newsletter is enabled")
		}
		if a.Store == nil {
			store, err := NewStore(a.Config.DatabasePath)
			if err != nil {
				return fmt.Errorf("folio: init store: %w", err)
			}
			a.Store = store
			a.ownsStore = true
		}
		a.limiter = NewRateLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start runs the preview server until ctx is cancelled, then shuts it down
// gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() {
		a.logger.Infof("folio: serving %s on %s", a.Config.Name, a.Config.Addr)
		errc <- a.Echo.Start(a.Config.Addr)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the limiter and any store the App opened itself.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
