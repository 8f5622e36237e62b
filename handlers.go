package folio

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))
	e.GET("/public/style.css", echo.WrapHandler(embeddedHandler))
	e.GET("/public/newsletter.js", echo.WrapHandler(embeddedHandler))
	e.StaticFS("/public", a.staticFS)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/rss.xml", a.handleFeed)
	e.GET("/metrics", a.Metrics.handler())

	e.GET("/", a.handleHome)
	e.GET("/articles/", a.handleArticles)
	e.GET("/articles/*", a.handleArticle)
	for _, slug := range a.Config.Redirects {
		target := "/articles/" + slug + "/"
		e.GET("/"+slug+"/", func(c echo.Context) error {
			return c.Redirect(http.StatusMovedPermanently, target)
		})
	}

	if a.Config.NewsletterEnabled {
		e.POST("/newsletter/", a.handleNewsletterForm)
		e.POST("/api/newsletter", a.handleNewsletterAPI)
		e.GET("/newsletter/unsubscribe/:token/", a.handleUnsubscribe)
	}

	e.GET("/:page/", a.handlePage)
}

// page builds the shared view state for the current request.
func (a *App) page(c echo.Context, meta PageMeta) Page {
	p := NewPage(a.Config, meta)
	p.CSRFToken = CsrfToken(c)
	p.Flashes = Flashes(c)
	return p
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	articles, err := a.Library.Articles(ctx)
	if err != nil {
		return err
	}
	if len(articles) > HomeArticles {
		articles = articles[:HomeArticles]
	}
	recent, err := a.Library.RenderAll(articles)
	if err != nil {
		return err
	}
	p := a.page(c, PageMeta{Title: a.Config.Name, Description: a.Config.Description, URL: RootURL(a.Config.URL)})
	return Render(c, a.Views.Home(p, recent))
}

func (a *App) handleArticles(c echo.Context) error {
	ctx := c.Request().Context()
	tag := c.QueryParam("tag")
	articles, err := a.Library.Tagged(ctx, tag)
	if err != nil {
		return err
	}
	tags, err := a.Library.Tags(ctx)
	if err != nil {
		return err
	}
	rendered, err := a.Library.RenderAll(articles)
	if err != nil {
		return err
	}
	p := a.page(c, PageMeta{Title: "Articles", URL: BuildURL(a.Config.URL, "articles")})
	return Render(c, a.Views.Articles(p, rendered, tags, tag))
}

func (a *App) handleArticle(c echo.Context) error {
	ctx := c.Request().Context()
	slug := strings.Trim(c.Param("*"), "/")
	article, err := a.Library.Article(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	newer, older, err := a.Library.Adjacent(ctx, slug)
	if err != nil {
		return err
	}
	p := ArticlePage(a.Config, article)
	p.CSRFToken = CsrfToken(c)
	p.Flashes = Flashes(c)
	return Render(c, a.Views.Article(p, article, newer, older))
}

func (a *App) handlePage(c echo.Context) error {
	slug := c.Param("page")
	page, err := a.Library.Page(c.Request().Context(), slug)
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	p := a.page(c, PageMeta{
		Title:       page.Meta.Title,
		Description: page.Summary(),
		URL:         BuildURL(a.Config.URL, page.Slug),
		Image:       page.Meta.Image,
	})
	return Render(c, a.Views.Page(p, page))
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Library.Articles(c.Request().Context())
	if err != nil {
		return err
	}
	rendered, err := a.Library.RenderAll(articles)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteRSS(c.Response(), a.Config, rendered)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	articles, err := a.Library.Articles(ctx)
	if err != nil {
		return err
	}
	pages, err := a.Library.Pages(ctx)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteSitemap(c.Response(), a.Config, pages, articles)
}

func (a *App) handleRobots(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return WriteRobots(c.Response(), a.Config)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		p := a.page(c, PageMeta{Title: "Page not found"})
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(p))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.logger.Errorf("folio: server error: %v", err)
		p := NewPage(a.Config, PageMeta{Title: "Server error"})
		_ = RenderStatus(c, code, a.Views.ServerError(p))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
