package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTitle(t *testing.T) {
	assert.Equal(t, "My Blog", toTitle("my-blog"))
	assert.Equal(t, "Myblog", toTitle("myblog"))
	assert.Equal(t, "", toTitle(""))
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")
	data := Data{ProjectName: "my-blog", SiteName: "My Blog", Date: "2024-03-01"}

	created, err := Generate(dir, data)
	require.NoError(t, err)
	assert.Contains(t, created, filepath.Join(dir, "folio.yaml"))
	assert.Contains(t, created, filepath.Join(dir, ".env.example"))

	cfg, err := os.ReadFile(filepath.Join(dir, "folio.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), `name: "My Blog"`)

	article, err := os.ReadFile(filepath.Join(dir, "content", "articles", "hello-world", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(article), "date: 2024-03-01")

	_, err = os.Stat(filepath.Join(dir, "content", "pages", "about.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "public", "favicon.svg"))
	assert.NoError(t, err)
}

func TestGenerateRefusesExistingDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(dir, NewData("x"))
	assert.Error(t, err)
}
