// Package views is folio's default set of page components. Sites that want
// their own markup pass a different folio.ViewFuncs to folio.New.
package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// Funcs returns the default views.
func Funcs() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:        Home,
		Articles:    Articles,
		Article:     Article,
		Page:        Page,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Home lists the most recent articles under the site description.
func Home(p folio.Page, recent []folio.RenderedArticle) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw("<section><h1>")
		h.text(p.Site.Name)
		h.raw("</h1>")
		if p.Site.Description != "" {
			h.raw("<p>")
			h.text(p.Site.Description)
			h.raw("</p>")
		}
		h.raw("</section><section><h2>Recent articles</h2>")
		for _, a := range recent {
			h.render(card(a))
		}
		if len(recent) == 0 {
			h.raw("<p>Nothing published yet.</p>")
		}
		h.raw(`<p><a href="/articles/">All articles</a></p></section>`)
		h.render(Newsletter(p))
	}))
}

// Articles lists every article, optionally filtered by tag.
func Articles(p folio.Page, articles []folio.RenderedArticle, tags []string, activeTag string) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw("<h1>Articles</h1>")
		if len(tags) > 0 {
			h.raw(`<nav class="tags">`)
			h.raw("<a")
			h.attr("class", TagClass(activeTag == ""))
			h.raw(` href="/articles/">all</a>`)
			for _, t := range tags {
				h.raw("<a")
				h.attr("class", TagClass(t == activeTag))
				h.href(TagURL(t))
				h.raw(">")
				h.text(t)
				h.raw("</a>")
			}
			h.raw("</nav>")
		}
		for _, a := range articles {
			h.render(card(a))
		}
		if len(articles) == 0 {
			h.raw("<p>No articles found.</p>")
		}
	}))
}

// Article renders one article with links to its neighbours.
func Article(p folio.Page, a folio.RenderedArticle, newer, older *folio.Article) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<article class="prose"><header><h1>`)
		h.text(a.Meta.Title)
		h.raw(`</h1><p class="meta">`)
		if !a.Meta.Date.IsZero() {
			h.raw("<time")
			h.attr("datetime", a.Meta.Date.Format("2006-01-02"))
			h.raw(">")
			h.text(folio.FormatDate(a.Meta.Date))
			h.raw("</time> · ")
		}
		h.text(ReadingTime(a.ReadingTime))
		h.raw("</p>")
		if len(a.Meta.Tags) > 0 {
			h.raw(`<p class="tags">`)
			for _, t := range a.Meta.Tags {
				h.raw("<a")
				h.href(TagURL(t))
				h.raw(">")
				h.text(t)
				h.raw("</a>")
			}
			h.raw("</p>")
		}
		h.raw("</header>")
		h.render(templ.Raw(a.HTML))
		h.raw("</article>")

		if newer != nil || older != nil {
			h.raw(`<nav class="adjacent">`)
			if older != nil {
				h.raw(`<a rel="prev"`)
				h.href(older.Link())
				h.raw(">← ")
				h.text(older.Meta.Title)
				h.raw("</a>")
			} else {
				h.raw("<span></span>")
			}
			if newer != nil {
				h.raw(`<a rel="next"`)
				h.href(newer.Link())
				h.raw(">")
				h.text(newer.Meta.Title)
				h.raw(" →</a>")
			}
			h.raw("</nav>")
		}
		h.render(Newsletter(p))
		h.render(Comments(p.Site, a))
	}))
}

// Page renders a standalone page such as about or uses.
func Page(p folio.Page, page folio.RenderedArticle) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<article class="prose"><h1>`)
		h.text(page.Meta.Title)
		h.raw("</h1>")
		h.render(templ.Raw(page.HTML))
		h.raw("</article>")
	}))
}

// NotFound is the 404 page.
func NotFound(p folio.Page) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<h1>Page not found</h1><p>Sorry, that page does not exist. <a href="/">Go home</a>.</p>`)
	}))
}

// ServerError is the 500 page.
func ServerError(p folio.Page) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
	}))
}

func card(a folio.RenderedArticle) templ.Component {
	return component(func(h *html) {
		h.raw(`<a class="card"`)
		h.href(a.Link())
		h.raw("><h3>")
		h.text(a.Meta.Title)
		h.raw("</h3>")
		if !a.Meta.Date.IsZero() {
			h.raw("<time")
			h.attr("datetime", a.Meta.Date.Format("2006-01-02"))
			h.raw(">")
			h.text(folio.FormatDate(a.Meta.Date))
			h.raw("</time>")
		}
		if s := a.Summary(); s != "" {
			h.raw("<p>")
			h.text(s)
			h.raw("</p>")
		}
		h.raw("</a>")
	})
}
