package folio

import (
	"net/url"
	"time"
)

// Article is one content file: its slug, typed front-matter and raw body.
type Article struct {
	Slug     string
	Path     string // source path relative to the content root, slash separated
	Meta     Meta
	Contents string
}

// Meta is the typed view of an article's front-matter. Keys without a
// dedicated field are kept in Extra.
type Meta struct {
	Title       string
	Date        time.Time // zero when absent or unparsable
	DateRaw     string
	Description string
	Image       string
	Slug        string // explicit override; empty when the path decides
	Tags        []string
	Draft       bool
	Extra       map[string]any
}

// Link is the article's site-relative URL path, escaped for use in href.
func (a Article) Link() string {
	u := url.URL{Path: "/articles/" + a.Slug + "/"}
	return u.EscapedPath()
}

// RenderedArticle is an Article with its body converted to HTML.
type RenderedArticle struct {
	Article
	HTML        string
	Excerpt     string
	ReadingTime int // minutes
}

// Summary returns the description from front-matter, or the excerpt.
func (r RenderedArticle) Summary() string {
	if r.Meta.Description != "" {
		return r.Meta.Description
	}
	return r.Excerpt
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// MetaTag is a single <meta> element. Exactly one of Name or Property is set.
type MetaTag struct {
	Name     string
	Property string
	Content  string
}

// Page is everything a view needs besides its own content.
type Page struct {
	Site      SiteConfig
	Meta      PageMeta
	Tags      []MetaTag
	JSONLD    string
	CSRFToken string
	Flashes   []string
}
