package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "folio.yaml")
	writeFile(t, cfgFile, "name: From File\nurl: https://file.example\narticle_cache_ttl: 2m\nredirects: [old-post]\n")
	writeFile(t, filepath.Join(dir, ".env"), "FOLIO_AUTHOR=Dotenv Author\n")
	t.Cleanup(func() { os.Unsetenv("FOLIO_AUTHOR") })
	t.Setenv("FOLIO_URL", "https://env.example")

	cfg, err := loadConfig(viper.New(), cfgFile)
	require.NoError(t, err)

	assert.Equal(t, "From File", cfg.Name)
	assert.Equal(t, "https://env.example", cfg.URL)
	assert.Equal(t, "Dotenv Author", cfg.Author)
	assert.Equal(t, 2*time.Minute, cfg.ArticleCacheTTL)
	assert.Equal(t, []string{"old-post"}, cfg.Redirects)
	assert.Equal(t, "content/articles", cfg.ContentDir)
	assert.Equal(t, 8, cfg.ReadConcurrency)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigNewsletterNeedsSecret(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "folio.yaml")
	writeFile(t, cfgFile, "newsletter_enabled: true\n")

	_, err := loadConfig(viper.New(), cfgFile)
	assert.ErrorContains(t, err, "session_secret")
}

func TestCheckCommandReportsExclusions(t *testing.T) {
	dir := t.TempDir()
	articles := filepath.Join(dir, "articles")
	writeFile(t, filepath.Join(articles, "good.md"), "---\ntitle: Good\ndate: 2023-06-01\n---\nbody\n")
	writeFile(t, filepath.Join(articles, "undated.md"), "---\ntitle: Undated\n---\nbody\n")
	cfgFile := filepath.Join(dir, "folio.yaml")
	writeFile(t, cfgFile, "content_dir: "+articles+"\npages_dir: "+filepath.Join(dir, "pages")+"\n")

	out, err := run(t, "--config", cfgFile, "check")
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "good")
	assert.Contains(t, out, "1 articles, 0 pages")
	assert.Contains(t, out, "undated.md")
	assert.Contains(t, out, "date: cannot be blank")
}

func TestCheckCommandPasses(t *testing.T) {
	dir := t.TempDir()
	articles := filepath.Join(dir, "articles")
	writeFile(t, filepath.Join(articles, "a", "index.mdx"), "---\ntitle: A\ndate: 2023-01-01\n---\n")
	cfgFile := filepath.Join(dir, "folio.yaml")
	writeFile(t, cfgFile, "content_dir: "+articles+"\n")

	out, err := run(t, "--config", cfgFile, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "2023-01-01")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "folio dev\n", out)
}

func TestNewCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-site")
	out, err := run(t, "new", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created")
	_, err = os.Stat(filepath.Join(dir, "folio.yaml"))
	assert.NoError(t, err)
}
