package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// Layout wraps body in the site chrome: head metadata, navigation, flash
// messages and footer.
func Layout(p folio.Page, body templ.Component) templ.Component {
	return component(func(h *html) {
		site := p.Site
		h.raw("<!DOCTYPE html>\n<html")
		h.attr("lang", site.Lang)
		h.raw("><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.raw("<title>")
		h.text(folio.TitleFor(site, p.Meta.Title))
		h.raw("</title>")
		for _, tag := range p.Tags {
			if tag.Content == "" {
				continue
			}
			h.raw("<meta")
			if tag.Property != "" {
				h.attr("property", tag.Property)
			} else {
				h.attr("name", tag.Name)
			}
			h.attr("content", tag.Content)
			h.raw(">")
		}
		if p.Meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.href(p.Meta.URL)
			h.raw(">")
		}
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name+" RSS Feed")
		h.raw(` href="/rss.xml">`)
		h.raw(`<link rel="stylesheet" href="/public/style.css">`)
		if p.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`, p.JSONLD, `</script>`)
		}
		h.render(analytics(site.AnalyticsID))
		h.raw("</head><body><div class=\"container\">")

		h.raw(`<header class="site"><nav><a href="/">`)
		h.text(site.Name)
		h.raw(`</a><a href="/articles/">Articles</a><a href="/rss.xml">RSS</a></nav></header>`)

		for _, msg := range p.Flashes {
			h.raw(`<p class="flash" role="status">`)
			h.text(msg)
			h.raw("</p>")
		}

		h.raw("<main>")
		h.render(body)
		h.raw("</main>")

		h.raw(`<footer class="site"><p>`)
		owner := site.Author
		if owner == "" {
			owner = site.Name
		}
		h.text("© " + owner)
		h.raw("</p>")
		if len(site.Social) > 0 {
			h.raw("<ul>")
			for _, s := range site.Social {
				h.raw("<li><a")
				h.href(s.URL)
				h.raw(` rel="me noopener">`)
				h.text(s.Name)
				h.raw("</a></li>")
			}
			h.raw("</ul>")
		}
		h.raw("</footer></div></body></html>")
	})
}

// analytics renders the Google Analytics tag when id is set.
func analytics(id string) templ.Component {
	if id == "" {
		return nil
	}
	return component(func(h *html) {
		js, err := templ.JSONString(id)
		if err != nil {
			h.err = err
			return
		}
		h.raw(`<script async src="https://www.googletagmanager.com/gtag/js?id=`, templ.EscapeString(id), `"></script>`)
		h.raw(`<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',`, js, `);</script>`)
	})
}

// Comments renders the Disqus thread for an article when a shortname is
// configured.
func Comments(site folio.SiteConfig, a folio.RenderedArticle) templ.Component {
	if site.DisqusShortname == "" {
		return nil
	}
	return component(func(h *html) {
		url, err := templ.JSONString(folio.BuildURL(site.URL, "articles", a.Slug))
		if err != nil {
			h.err = err
			return
		}
		id, _ := templ.JSONString(a.Slug)
		title, _ := templ.JSONString(a.Meta.Title)
		h.raw(`<section class="comments"><div id="disqus_thread"></div><script>var disqus_config=function(){this.page.url=`, url,
			`;this.page.identifier=`, id, `;this.page.title=`, title, `;};(function(){var d=document,s=d.createElement('script');s.src='https://`,
			templ.EscapeString(site.DisqusShortname), `.disqus.com/embed.js';s.setAttribute('data-timestamp',+new Date());(d.head||d.body).appendChild(s);})();</script></section>`)
	})
}

// Newsletter renders the sign-up form. With a CSRF token it posts to the
// server; without one (static builds) it posts JSON via newsletter.js.
func Newsletter(p folio.Page) templ.Component {
	if !p.Site.NewsletterEnabled {
		return nil
	}
	return component(func(h *html) {
		h.raw(`<form class="newsletter" method="post" action="/newsletter/"`)
		if p.CSRFToken == "" {
			h.raw(` data-api="/api/newsletter"`)
		}
		h.raw(`><label for="newsletter-email">Get new articles by email</label>`)
		h.raw(`<input id="newsletter-email" type="email" name="email" placeholder="you@example.com" required>`)
		if p.CSRFToken != "" {
			h.raw(`<input type="hidden" name="_csrf"`)
			h.attr("value", p.CSRFToken)
			h.raw(">")
		}
		h.raw(`<button type="submit">Subscribe</button><span class="status" aria-live="polite"></span></form>`)
		if p.CSRFToken == "" {
			h.raw(`<script src="/public/newsletter.js" defer></script>`)
		}
	})
}
