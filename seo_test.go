package folio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagMap(tags []MetaTag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		key := t.Name
		if t.Property != "" {
			key = t.Property
		}
		m[key] = t.Content
	}
	return m
}

func TestTitleFor(t *testing.T) {
	cfg := SiteConfig{Name: "Field Notes"}
	assert.Equal(t, "Hello | Field Notes", TitleFor(cfg, "Hello"))
	assert.Equal(t, "Field Notes", TitleFor(cfg, ""))
	assert.Equal(t, "Field Notes", TitleFor(cfg, "Field Notes"))
}

func TestMetaTags(t *testing.T) {
	cfg := SiteConfig{
		Name:          "Field Notes",
		URL:           "https://notes.example",
		Description:   "Site description",
		TwitterHandle: "@notes",
		DefaultImage:  "/public/og.png",
	}

	tags := tagMap(MetaTags(cfg, PageMeta{Title: "Post", URL: "https://notes.example/articles/post/", OGType: "article"}))

	assert.Equal(t, "Site description", tags["description"])
	assert.Equal(t, "Post | Field Notes", tags["og:title"])
	assert.Equal(t, "article", tags["og:type"])
	assert.Equal(t, "https://notes.example/articles/post/", tags["og:url"])
	assert.Equal(t, "https://notes.example/public/og.png", tags["og:image"])
	assert.Equal(t, "https://notes.example/public/og.png", tags["twitter:image"])
	assert.Equal(t, "@notes", tags["twitter:creator"])
	assert.Equal(t, "summary", tags["twitter:card"])
}

func TestMetaTagsWithoutImageOrHandle(t *testing.T) {
	cfg := SiteConfig{Name: "Plain", URL: "https://plain.example"}
	tags := tagMap(MetaTags(cfg, PageMeta{Description: "Own description"}))

	assert.Equal(t, "Own description", tags["description"])
	assert.Equal(t, "website", tags["og:type"])
	assert.NotContains(t, tags, "og:image")
	assert.NotContains(t, tags, "og:url")
	assert.NotContains(t, tags, "twitter:creator")
}

func TestArticlePageJSONLD(t *testing.T) {
	cfg := SiteConfig{Name: "Field Notes", URL: "https://notes.example", Author: "Ada"}
	a := RenderedArticle{
		Article: Article{Slug: "post", Meta: Meta{
			Title: "A <Post>",
			Date:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Image: "/public/cover.png",
			Tags:  []string{"go", "web"},
		}},
		Excerpt: "Summary text",
	}

	p := ArticlePage(cfg, a)

	assert.Equal(t, "https://notes.example/articles/post/", p.Meta.URL)
	assert.Equal(t, "Summary text", p.Meta.Description)
	assert.NotContains(t, p.JSONLD, "<Post>")

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(p.JSONLD), &data))
	assert.Equal(t, "BlogPosting", data["@type"])
	assert.Equal(t, "A <Post>", data["headline"])
	assert.Equal(t, "2023-06-01", data["datePublished"])
	assert.Equal(t, "https://notes.example/public/cover.png", data["image"])
	assert.Equal(t, "go, web", data["keywords"])
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Ada"}, data["author"])
}

func TestWebsiteJSONLD(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJSONLD(SiteConfig{Name: "N", URL: "https://n.example"})), &data))
	assert.Equal(t, "WebSite", data["@type"])
	assert.Equal(t, "https://n.example/", data["url"])
	assert.NotContains(t, data, "author")
}
