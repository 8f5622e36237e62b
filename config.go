package folio

import (
	"io/fs"
	"time"
)

// SocialLink is a profile shown in the site footer.
type SocialLink struct {
	Name     string `mapstructure:"name"`
	Username string `mapstructure:"username"`
	URL      string `mapstructure:"url"`
}

// SiteConfig holds all configuration for a folio site. It is built once at
// startup and passed by value; nothing mutates it afterwards.
type SiteConfig struct {
	Name            string       `mapstructure:"name"`        // Site name (default "Blog")
	URL             string       `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description     string       `mapstructure:"description"` // Site description for RSS and meta tags
	Author          string       `mapstructure:"author"`      // Author name for JSON-LD and twitter:creator
	Lang            string       `mapstructure:"lang"`        // <html lang> (default "en")
	TwitterHandle   string       `mapstructure:"twitter_handle"`
	DefaultImage    string       `mapstructure:"default_image"` // og:image fallback, site-relative
	AnalyticsID     string       `mapstructure:"analytics_id"`
	DisqusShortname string       `mapstructure:"disqus_shortname"`
	Social          []SocialLink `mapstructure:"social"`

	ContentDir string `mapstructure:"content_dir"` // Articles (default "content/articles")
	PagesDir   string `mapstructure:"pages_dir"`   // Standalone pages (default "content/pages")
	StaticDir  string `mapstructure:"static_dir"`  // Copied verbatim to /public (default "public")
	OutputDir  string `mapstructure:"output_dir"`  // Static build target (default "dist")

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // SQLite path (default "data/folio.db")

	NewsletterEnabled bool   `mapstructure:"newsletter_enabled"`
	SessionSecret     string `mapstructure:"session_secret"` // Required when the newsletter is enabled
	CookieSecure      bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	ArticleCacheTTL time.Duration `mapstructure:"article_cache_ttl"` // default 5min
	ReadConcurrency int           `mapstructure:"read_concurrency"`  // default 8
	ExcerptLength   int           `mapstructure:"excerpt_length"`    // default 160
	MaxImageWidth   int           `mapstructure:"max_image_width"`   // default 800
	IncludeDrafts   bool          `mapstructure:"include_drafts"`

	Redirects   []string `mapstructure:"redirects"`    // legacy root-level slugs
	StaticPages []string `mapstructure:"static_pages"` // extra sitemap paths
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/articles"
	}
	if c.PagesDir == "" {
		c.PagesDir = "content/pages"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
	if c.ReadConcurrency <= 0 {
		c.ReadConcurrency = 8
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = 160
	}
	if c.MaxImageWidth <= 0 {
		c.MaxImageWidth = 800
	}
	if c.StaticPages == nil {
		c.StaticPages = []string{"", "articles"}
	}
}

// WithDefaults returns a copy of c with every unset field filled in.
func (c SiteConfig) WithDefaults() SiteConfig {
	c.setDefaults()
	return c
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default gommon logger.
func WithLogger(l Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithContentFS reads articles and pages from fsys instead of the
// directories named in SiteConfig. Paths inside fsys are the config's
// ContentDir and PagesDir.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// WithStore supplies an already opened subscriber store.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
