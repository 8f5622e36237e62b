package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/folio"
)

// configKeys are the SiteConfig keys that may come from the environment as
// FOLIO_<KEY>. Viper only consults the environment for keys it knows about
// when unmarshalling, so each is bound explicitly.
var configKeys = []string{
	"name", "url", "description", "author", "lang", "twitter_handle",
	"default_image", "analytics_id", "disqus_shortname",
	"content_dir", "pages_dir", "static_dir", "output_dir",
	"addr", "database_path",
	"newsletter_enabled", "session_secret", "cookie_secure",
	"article_cache_ttl", "read_concurrency", "excerpt_length", "max_image_width",
	"include_drafts", "redirects", "static_pages",
}

// loadConfig layers defaults, the config file, a .env file next to it and
// FOLIO_* environment variables (plus any flags already bound to v).
// A missing config file is not an error unless cfgFile names it explicitly.
func loadConfig(v *viper.Viper, cfgFile string) (folio.SiteConfig, error) {
	dir := "."
	if cfgFile != "" {
		dir = filepath.Dir(cfgFile)
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return folio.SiteConfig{}, fmt.Errorf("load .env: %w", err)
	}

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return folio.SiteConfig{}, err
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("folio")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return folio.SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg folio.SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return folio.SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg = cfg.WithDefaults()
	if cfg.NewsletterEnabled && cfg.SessionSecret == "" {
		return cfg, errors.New("session_secret (FOLIO_SESSION_SECRET) is required when newsletter_enabled is set")
	}
	return cfg, nil
}

// configPath reports the file viper read, or "" when none was found.
func configPath(v *viper.Viper) string {
	if f := v.ConfigFileUsed(); f != "" {
		if _, err := os.Stat(f); err == nil {
			return f
		}
	}
	return ""
}
