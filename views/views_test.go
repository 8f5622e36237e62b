package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

var site = folio.SiteConfig{
	Name:        "Field Notes",
	URL:         "https://notes.example",
	Description: "Things <learned>",
	Author:      "Ada",
	Social:      []folio.SocialLink{{Name: "GitHub", URL: "https://github.com/ada"}},
}.WithDefaults()

func sample() folio.RenderedArticle {
	return folio.RenderedArticle{
		Article: folio.Article{Slug: "hello", Meta: folio.Meta{
			Title: `Hello "World"`,
			Date:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Tags:  []string{"go", "c++"},
		}},
		HTML:        "<p>Body <em>html</em></p>",
		Excerpt:     "Body html",
		ReadingTime: 3,
	}
}

func TestLayoutHead(t *testing.T) {
	p := folio.NewPage(site, folio.PageMeta{Title: "About", URL: "https://notes.example/about/"})
	p.Flashes = []string{"Saved <ok>"}

	out := render(t, Layout(p, templ.Raw("<p>inner</p>")))

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, "<title>About | Field Notes</title>")
	assert.Contains(t, out, `<meta name="description" content="Things &lt;learned&gt;">`)
	assert.Contains(t, out, `<meta property="og:title" content="About | Field Notes">`)
	assert.Contains(t, out, `<link rel="canonical" href="https://notes.example/about/">`)
	assert.Contains(t, out, `<script type="application/ld+json">`)
	assert.Contains(t, out, `<p class="flash" role="status">Saved &lt;ok&gt;</p>`)
	assert.Contains(t, out, "<main><p>inner</p></main>")
	assert.Contains(t, out, "© Ada")
	assert.Contains(t, out, `href="https://github.com/ada" rel="me noopener">GitHub</a>`)
	assert.NotContains(t, out, "googletagmanager")
}

func TestLayoutAnalytics(t *testing.T) {
	cfg := site
	cfg.AnalyticsID = "G-TEST123"
	out := render(t, Layout(folio.NewPage(cfg, folio.PageMeta{}), templ.NopComponent))
	assert.Contains(t, out, "https://www.googletagmanager.com/gtag/js?id=G-TEST123")
	assert.Contains(t, out, `gtag('config',"G-TEST123")`)
}

func TestArticleView(t *testing.T) {
	a := sample()
	older := &folio.Article{Slug: "older", Meta: folio.Meta{Title: "Older one"}}
	out := render(t, Article(folio.ArticlePage(site, a), a, nil, older))

	assert.Contains(t, out, "<h1>Hello &#34;World&#34;</h1>")
	assert.Contains(t, out, `<time datetime="2023-06-01">June 1, 2023</time>`)
	assert.Contains(t, out, "3 min read")
	assert.Contains(t, out, `href="/articles/?tag=c%2B%2B"`)
	assert.Contains(t, out, "<p>Body <em>html</em></p>")
	assert.Contains(t, out, `<a rel="prev" href="/articles/older/">← Older one</a>`)
	assert.NotContains(t, out, `rel="next"`)
	assert.NotContains(t, out, "newsletter")
	assert.NotContains(t, out, "disqus")
}

func TestArticleViewComments(t *testing.T) {
	cfg := site
	cfg.DisqusShortname = "fieldnotes"
	a := sample()
	out := render(t, Article(folio.ArticlePage(cfg, a), a, nil, nil))

	assert.Contains(t, out, `this.page.url="https://notes.example/articles/hello/"`)
	assert.Contains(t, out, `this.page.identifier="hello"`)
	assert.Contains(t, out, "https://fieldnotes.disqus.com/embed.js")
	assert.NotContains(t, out, `class="adjacent"`)
}

func TestNewsletterForm(t *testing.T) {
	cfg := site
	cfg.NewsletterEnabled = true

	static := render(t, Newsletter(folio.NewPage(cfg, folio.PageMeta{})))
	assert.Contains(t, static, `data-api="/api/newsletter"`)
	assert.Contains(t, static, `<script src="/public/newsletter.js" defer></script>`)
	assert.NotContains(t, static, `name="_csrf"`)

	p := folio.NewPage(cfg, folio.PageMeta{})
	p.CSRFToken = "tok"
	served := render(t, Newsletter(p))
	assert.Contains(t, served, `<input type="hidden" name="_csrf" value="tok">`)
	assert.NotContains(t, served, "data-api")

	assert.Nil(t, Newsletter(folio.NewPage(site, folio.PageMeta{})))
}

func TestArticlesView(t *testing.T) {
	out := render(t, Articles(folio.NewPage(site, folio.PageMeta{Title: "Articles"}),
		[]folio.RenderedArticle{sample()}, []string{"go", "web"}, "go"))

	assert.Contains(t, out, `<a class="tag" href="/articles/">all</a>`)
	assert.Contains(t, out, `<a class="tag active" href="/articles/?tag=go">go</a>`)
	assert.Contains(t, out, `<a class="card" href="/articles/hello/">`)
	assert.Contains(t, out, "<p>Body html</p>")

	empty := render(t, Articles(folio.NewPage(site, folio.PageMeta{}), nil, nil, ""))
	assert.Contains(t, empty, "No articles found.")
	assert.NotContains(t, empty, `class="tags"`)
}

func TestHomeView(t *testing.T) {
	out := render(t, Home(folio.NewPage(site, folio.PageMeta{}), nil))
	assert.Contains(t, out, "<h1>Field Notes</h1>")
	assert.Contains(t, out, "Nothing published yet.")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "tag", TagClass(false))
	assert.Equal(t, "tag active", TagClass(true))
	assert.Equal(t, "/articles/?tag=a+b", TagURL("a b"))
	assert.Equal(t, "go, web", JoinTags([]string{"go", "web"}))
	assert.Equal(t, "1 min read", ReadingTime(0))
	assert.Equal(t, "7 min read", ReadingTime(7))
}
