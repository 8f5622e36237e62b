package folio

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// BuildReport summarises a static build.
type BuildReport struct {
	OutputDir string
	Articles  int
	Pages     int
	Redirects int
	Assets    int
	Resized   int
	Skipped   []Skipped
	Drafts    int
	Duration  time.Duration
}

// Build renders the whole site into Config.OutputDir. The directory is
// removed and recreated first. Any error aborts the build.
func (a *App) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	out := a.Config.OutputDir
	report := BuildReport{OutputDir: out}

	res, err := a.ArticleLoader().LoadReport(ctx)
	if err != nil {
		return report, err
	}
	pages, err := a.PageLoader().Load(ctx)
	if err != nil {
		return report, err
	}
	if err := checkPageSlugs(pages); err != nil {
		return report, err
	}
	for _, list := range [][]Article{res.Articles, pages} {
		for _, item := range list {
			if item.Slug == "." || !fs.ValidPath(item.Slug) {
				return report, fmt.Errorf("folio: slug %q of %s is not a valid output path", item.Slug, item.Path)
			}
		}
	}
	a.Metrics.observeLoad(res, len(pages))
	report.Skipped, report.Drafts = res.Skipped, res.Drafts

	rendered, err := a.Library.RenderAll(res.Articles)
	if err != nil {
		return report, err
	}

	if err := os.RemoveAll(out); err != nil {
		return report, fmt.Errorf("folio: clean %s: %w", out, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return report, err
	}

	b := builder{app: a, ctx: ctx, out: out}

	recent := rendered
	if len(recent) > HomeArticles {
		recent = recent[:HomeArticles]
	}
	home := NewPage(a.Config, PageMeta{Title: a.Config.Name, Description: a.Config.Description, URL: RootURL(a.Config.URL)})
	b.page("index.html", a.Views.Home(home, recent))

	tags := collectTags(res.Articles)
	list := NewPage(a.Config, PageMeta{Title: "Articles", URL: BuildURL(a.Config.URL, "articles")})
	b.page("articles/index.html", a.Views.Articles(list, rendered, tags, ""))

	for i, article := range rendered {
		var newer, older *Article
		if i > 0 {
			newer = &rendered[i-1].Article
		}
		if i+1 < len(rendered) {
			older = &rendered[i+1].Article
		}
		p := ArticlePage(a.Config, article)
		b.page(filepath.Join("articles", filepath.FromSlash(article.Slug), "index.html"), a.Views.Article(p, article, newer, older))
	}
	report.Articles = len(rendered)

	for _, page := range pages {
		r, err := a.Library.Render(page)
		if err != nil {
			return report, err
		}
		p := NewPage(a.Config, PageMeta{
			Title:       r.Meta.Title,
			Description: r.Summary(),
			URL:         BuildURL(a.Config.URL, r.Slug),
			Image:       r.Meta.Image,
		})
		b.page(filepath.Join(filepath.FromSlash(r.Slug), "index.html"), a.Views.Page(p, r))
	}
	report.Pages = len(pages)

	notFound := NewPage(a.Config, PageMeta{Title: "Page not found"})
	b.page("404.html", a.Views.NotFound(notFound))

	for _, slug := range a.Config.Redirects {
		b.redirect(slug, BuildURL(a.Config.URL, "articles", slug))
	}
	report.Redirects = len(a.Config.Redirects)

	b.file("rss.xml", func(f *os.File) error { return WriteRSS(f, a.Config, rendered) })
	b.file("sitemap.xml", func(f *os.File) error { return WriteSitemap(f, a.Config, pages, res.Articles) })
	b.file("robots.txt", func(f *os.File) error { return WriteRobots(f, a.Config) })
	if b.err != nil {
		return report, b.err
	}

	publicDir := filepath.Join(out, "public")
	embedded, _ := fs.Sub(EmbeddedAssets, "embedded")
	n, _, err := copyStatic(embedded, publicDir, 0)
	if err != nil {
		return report, fmt.Errorf("folio: copy embedded assets: %w", err)
	}
	files, resized, err := copyStatic(a.staticFS, publicDir, a.Config.MaxImageWidth)
	if err != nil {
		return report, fmt.Errorf("folio: copy static files: %w", err)
	}
	report.Assets, report.Resized = n+files, resized

	report.Duration = time.Since(start)
	a.Metrics.BuildSeconds.Observe(report.Duration.Seconds())
	a.logger.Infof("folio: built %d articles and %d pages into %s in %s", report.Articles, report.Pages, out, report.Duration.Round(time.Millisecond))
	return report, nil
}

// builder writes output files, keeping the first error.
type builder struct {
	app *App
	ctx context.Context
	out string
	err error
}

func (b *builder) page(name string, cmp templ.Component) {
	if b.err != nil {
		return
	}
	if err := b.ctx.Err(); err != nil {
		b.err = err
		return
	}
	if err := RenderFile(b.ctx, filepath.Join(b.out, name), cmp); err != nil {
		b.err = fmt.Errorf("folio: %w", err)
	}
}

func (b *builder) file(name string, write func(*os.File) error) {
	if b.err != nil {
		return
	}
	f, err := os.Create(filepath.Join(b.out, name))
	if err != nil {
		b.err = err
		return
	}
	if err := write(f); err != nil {
		f.Close()
		b.err = fmt.Errorf("folio: write %s: %w", name, err)
		return
	}
	b.err = f.Close()
}

var redirectTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Redirecting</title>
<link rel="canonical" href="{{.}}">
<meta http-equiv="refresh" content="0; url={{.}}">
<meta name="robots" content="noindex">
</head>
<body><p>Moved to <a href="{{.}}">{{.}}</a>.</p></body>
</html>
`))

func (b *builder) redirect(slug, target string) {
	if b.err != nil {
		return
	}
	slug = strings.Trim(slug, "/")
	name := filepath.Join(b.out, filepath.FromSlash(slug), "index.html")
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		b.err = err
		return
	}
	f, err := os.Create(name)
	if err != nil {
		b.err = err
		return
	}
	if err := redirectTemplate.Execute(f, target); err != nil {
		f.Close()
		b.err = fmt.Errorf("folio: redirect %s: %w", slug, err)
		return
	}
	b.err = f.Close()
}
