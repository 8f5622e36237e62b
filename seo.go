package folio

import (
	"encoding/json"
	"strings"
)

// TitleFor formats a page title with the site name appended.
func TitleFor(cfg SiteConfig, title string) string {
	if title == "" || title == cfg.Name {
		return cfg.Name
	}
	return title + " | " + cfg.Name
}

// MetaTags assembles the description, OpenGraph and Twitter card tags for a
// page. Image references are made absolute and fall back to the site's
// default image.
func MetaTags(cfg SiteConfig, meta PageMeta) []MetaTag {
	description := meta.Description
	if description == "" {
		description = cfg.Description
	}
	ogType := meta.OGType
	if ogType == "" {
		ogType = "website"
	}
	image := meta.Image
	if image == "" {
		image = cfg.DefaultImage
	}
	image = AbsoluteURL(cfg.URL, image)
	title := TitleFor(cfg, meta.Title)

	tags := []MetaTag{
		{Name: "description", Content: description},
		{Property: "og:title", Content: title},
		{Property: "og:description", Content: description},
		{Property: "og:type", Content: ogType},
		{Property: "og:site_name", Content: cfg.Name},
	}
	if meta.URL != "" {
		tags = append(tags, MetaTag{Property: "og:url", Content: meta.URL})
	}
	if image != "" {
		tags = append(tags, MetaTag{Property: "og:image", Content: image})
	}
	tags = append(tags, MetaTag{Name: "twitter:card", Content: "summary"})
	if cfg.TwitterHandle != "" {
		handle := "@" + strings.TrimPrefix(cfg.TwitterHandle, "@")
		tags = append(tags, MetaTag{Name: "twitter:creator", Content: handle})
	}
	tags = append(tags,
		MetaTag{Name: "twitter:title", Content: title},
		MetaTag{Name: "twitter:description", Content: description},
	)
	if image != "" {
		tags = append(tags,
			MetaTag{Name: "twitter:image", Content: image},
			MetaTag{Name: "image", Content: image},
		)
	}
	return tags
}

// NewPage returns the shared view state for a page with the given metadata.
func NewPage(cfg SiteConfig, meta PageMeta) Page {
	return Page{
		Site:   cfg,
		Meta:   meta,
		Tags:   MetaTags(cfg, meta),
		JSONLD: WebsiteJSONLD(cfg),
	}
}

// ArticlePage returns the view state for an article detail page.
func ArticlePage(cfg SiteConfig, a RenderedArticle) Page {
	p := NewPage(cfg, PageMeta{
		Title:       a.Meta.Title,
		Description: a.Summary(),
		URL:         BuildURL(cfg.URL, "articles", a.Slug),
		OGType:      "article",
		Image:       a.Meta.Image,
	})
	p.JSONLD = BlogPostingJSONLD(cfg, a)
	return p
}

// WebsiteJSONLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJSONLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      RootURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJSONLD(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting JSON-LD block for an article.
func BlogPostingJSONLD(cfg SiteConfig, a RenderedArticle) string {
	articleURL := BuildURL(cfg.URL, "articles", a.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    a.Meta.Title,
		"description": a.Summary(),
		"url":         articleURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   articleURL,
		},
	}
	if !a.Meta.Date.IsZero() {
		data["datePublished"] = a.Meta.Date.Format("2006-01-02")
	}
	if img := AbsoluteURL(cfg.URL, a.Meta.Image); img != "" {
		data["image"] = img
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(a.Meta.Tags) > 0 {
		data["keywords"] = strings.Join(a.Meta.Tags, ", ")
	}
	return marshalJSONLD(data)
}

func marshalJSONLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
