package folio

import (
	"encoding/xml"
	"io"
	"time"
)

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	Description string      `xml:"description"`
	PubDate     string      `xml:"pubDate,omitempty"`
	GUID        rssGUID     `xml:"guid"`
	Categories  []string    `xml:"category,omitempty"`
	Content     *rssContent `xml:",omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssContent struct {
	XMLName xml.Name `xml:"content:encoded"`
	Content string   `xml:",cdata"`
}

// WriteRSS writes an RSS 2.0 feed of articles, which must already be
// sorted newest first.
func WriteRSS(w io.Writer, cfg SiteConfig, articles []RenderedArticle) error {
	base := cfg.URL
	items := make([]rssItem, 0, len(articles))
	for _, a := range articles {
		link := BuildURL(base, "articles", a.Slug)
		item := rssItem{
			Title:       a.Meta.Title,
			Link:        link,
			Description: a.Summary(),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Categories:  a.Meta.Tags,
		}
		if !a.Meta.Date.IsZero() {
			item.PubDate = a.Meta.Date.Format(time.RFC1123Z)
		}
		if a.HTML != "" {
			item.Content = &rssContent{Content: a.HTML}
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version:   "2.0",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:       cfg.Name + " RSS Feed",
			Link:        RootURL(base),
			Description: cfg.Description,
			Language:    cfg.Lang,
			Items:       items,
		},
	}
	if len(articles) > 0 && !articles[0].Meta.Date.IsZero() {
		feed.Channel.LastBuildDate = articles[0].Meta.Date.Format(time.RFC1123Z)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}
