// Package scaffold creates a new folio site from embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Templates contains all scaffold template files. Files with a .tmpl suffix
// are executed as Go text/templates; the rest are copied as-is.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	Date        string // YYYY-MM-DD, used for the sample article
}

// NewData derives template data from a project name such as "my-blog".
func NewData(name string) Data {
	return Data{
		ProjectName: name,
		SiteName:    toTitle(name),
		Date:        time.Now().Format("2006-01-02"),
	}
}

// Generate writes a new site into dir, which must not exist yet. It returns
// the created file paths.
func Generate(dir string, data Data) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}
	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		outPath := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))
		if path.Base(rel) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if err := writeFile(outPath, p, content, data); err != nil {
			return err
		}
		created = append(created, outPath)
		return nil
	})
	return created, err
}

func writeFile(outPath, name string, content []byte, data Data) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	if !strings.HasSuffix(name, ".tmpl") {
		_, err = f.Write(content)
		return err
	}
	tmpl, err := template.New(path.Base(name)).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
