package folio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/eringen/folio/markdown"
)

// ErrNotFound is returned when a requested article or page does not exist.
var ErrNotFound = errors.New("folio: not found")

// ErrReservedSlug is returned when a standalone page would shadow a
// built-in route.
var ErrReservedSlug = errors.New("folio: reserved page slug")

var reservedPageSlugs = []string{"articles", "public", "newsletter"}

func checkPageSlugs(pages []Article) error {
	for _, p := range pages {
		if slices.Contains(reservedPageSlugs, p.Slug) {
			return fmt.Errorf("%w %q: %s", ErrReservedSlug, p.Slug, p.Path)
		}
	}
	return nil
}

// Library is an in-memory cache of loaded articles and pages with TTL.
// Rendered HTML is memoised per slug until the next reload.
type Library struct {
	mu       sync.RWMutex
	articles []Article
	pages    []Article
	tags     []string
	fetched  time.Time
	ttl      time.Duration

	articleLoader *Loader
	pageLoader    *Loader
	renderer      *markdown.Renderer
	excerptLength int
	rendered      *cache.Cache

	// OnLoad, when set, is called under the write lock after every reload.
	OnLoad func(res LoadResult, pages int)
}

// NewLibrary creates a Library over the given loaders. pages may be nil.
func NewLibrary(articles, pages *Loader, renderer *markdown.Renderer, cfg SiteConfig) *Library {
	cfg.setDefaults()
	if renderer == nil {
		renderer = markdown.New()
	}
	return &Library{
		ttl:           cfg.ArticleCacheTTL,
		articleLoader: articles,
		pageLoader:    pages,
		renderer:      renderer,
		excerptLength: cfg.ExcerptLength,
		// No janitor: entries are dropped wholesale by Flush on reload.
		rendered: cache.New(cfg.ArticleCacheTTL, 0),
	}
}

func (l *Library) valid() bool {
	return l.articles != nil && time.Since(l.fetched) < l.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.articles = nil
	l.pages = nil
	l.tags = nil
	l.mu.Unlock()
	l.rendered.Flush()
}

func (l *Library) load(ctx context.Context) error {
	if l.valid() {
		return nil
	}
	res, err := l.articleLoader.LoadReport(ctx)
	if err != nil {
		return err
	}
	articles := res.Articles
	var pages []Article
	if l.pageLoader != nil {
		if pages, err = l.pageLoader.Load(ctx); err != nil {
			return err
		}
		if err := checkPageSlugs(pages); err != nil {
			return err
		}
	}
	if articles == nil {
		articles = []Article{}
	}
	l.articles = articles
	l.pages = pages
	l.tags = collectTags(articles)
	l.fetched = time.Now()
	l.rendered.Flush()
	if l.OnLoad != nil {
		l.OnLoad(res, len(pages))
	}
	return nil
}

// ensureLoaded returns cached articles and pages after ensuring the cache is
// fresh. It tries a read lock first; only takes a write lock if a reload is
// needed.
func (l *Library) ensureLoaded(ctx context.Context) ([]Article, []Article, error) {
	l.mu.RLock()
	if l.valid() {
		articles, pages := l.articles, l.pages
		l.mu.RUnlock()
		return articles, pages, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(ctx); err != nil {
		return nil, nil, err
	}
	return l.articles, l.pages, nil
}

// Articles returns all articles, newest first.
func (l *Library) Articles(ctx context.Context) ([]Article, error) {
	articles, _, err := l.ensureLoaded(ctx)
	return articles, err
}

// Tagged returns articles carrying tag, compared case-insensitively. An
// empty tag returns every article.
func (l *Library) Tagged(ctx context.Context, tag string) ([]Article, error) {
	articles, err := l.Articles(ctx)
	if err != nil || tag == "" {
		return articles, err
	}
	normalized := normalizeTag(tag)
	var filtered []Article
	for _, a := range articles {
		for _, t := range a.Meta.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, a)
				break
			}
		}
	}
	return filtered, nil
}

// Tags returns every distinct tag in use, sorted.
func (l *Library) Tags(ctx context.Context) ([]string, error) {
	if _, _, err := l.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tags, nil
}

// Pages returns all standalone pages in discovery order.
func (l *Library) Pages(ctx context.Context) ([]Article, error) {
	_, pages, err := l.ensureLoaded(ctx)
	return pages, err
}

// Article returns a rendered article by slug.
func (l *Library) Article(ctx context.Context, slug string) (RenderedArticle, error) {
	articles, _, err := l.ensureLoaded(ctx)
	if err != nil {
		return RenderedArticle{}, err
	}
	return l.find(articles, "article:", slug)
}

// Page returns a rendered standalone page by slug.
func (l *Library) Page(ctx context.Context, slug string) (RenderedArticle, error) {
	_, pages, err := l.ensureLoaded(ctx)
	if err != nil {
		return RenderedArticle{}, err
	}
	return l.find(pages, "page:", slug)
}

// Adjacent returns the newer and older neighbours of slug.
func (l *Library) Adjacent(ctx context.Context, slug string) (newer, older *Article, err error) {
	articles, err := l.Articles(ctx)
	if err != nil {
		return nil, nil, err
	}
	newer, older = Adjacent(articles, slug)
	return newer, older, nil
}

func (l *Library) find(list []Article, prefix, slug string) (RenderedArticle, error) {
	if v, ok := l.rendered.Get(prefix + slug); ok {
		return v.(RenderedArticle), nil
	}
	for _, a := range list {
		if a.Slug == slug {
			r, err := l.Render(a)
			if err != nil {
				return RenderedArticle{}, err
			}
			l.rendered.SetDefault(prefix+slug, r)
			return r, nil
		}
	}
	return RenderedArticle{}, ErrNotFound
}

// RenderAll renders each article, reusing memoised results.
func (l *Library) RenderAll(articles []Article) ([]RenderedArticle, error) {
	out := make([]RenderedArticle, 0, len(articles))
	for _, a := range articles {
		key := "article:" + a.Slug
		if v, ok := l.rendered.Get(key); ok {
			out = append(out, v.(RenderedArticle))
			continue
		}
		r, err := l.Render(a)
		if err != nil {
			return nil, err
		}
		l.rendered.SetDefault(key, r)
		out = append(out, r)
	}
	return out, nil
}

// Render converts an article body to HTML and fills the derived fields.
func (l *Library) Render(a Article) (RenderedArticle, error) {
	html, err := l.renderer.Render(a.Contents)
	if err != nil {
		return RenderedArticle{}, fmt.Errorf("folio: render %s: %w", a.Slug, err)
	}
	return RenderedArticle{
		Article:     a,
		HTML:        html,
		Excerpt:     markdown.Excerpt(a.Contents, l.excerptLength),
		ReadingTime: markdown.ReadingTime(a.Contents),
	}, nil
}

func collectTags(articles []Article) []string {
	seen := map[string]bool{}
	var tags []string
	for _, a := range articles {
		for _, t := range a.Meta.Tags {
			n := normalizeTag(t)
			if n != "" && !seen[n] {
				seen[n] = true
				tags = append(tags, n)
			}
		}
	}
	slices.Sort(tags)
	return tags
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
