package folio

import (
	"encoding/xml"
	"fmt"
	"io"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes the sitemap: configured static paths, then pages, then
// articles with their date as lastmod.
func WriteSitemap(w io.Writer, cfg SiteConfig, pages, articles []Article) error {
	base := cfg.URL
	urls := make([]sitemapURL, 0, len(cfg.StaticPages)+len(pages)+len(articles))
	for _, p := range cfg.StaticPages {
		if p == "" {
			urls = append(urls, sitemapURL{Loc: RootURL(base)})
			continue
		}
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p)})
	}
	for _, p := range pages {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p.Slug)})
	}
	for _, a := range articles {
		u := sitemapURL{Loc: BuildURL(base, "articles", a.Slug)}
		if !a.Meta.Date.IsZero() {
			u.LastMod = a.Meta.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}

// WriteRobots writes a robots.txt allowing everything and naming the sitemap.
func WriteRobots(w io.Writer, cfg SiteConfig) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", RootURL(cfg.URL)+"sitemap.xml")
	return err
}
