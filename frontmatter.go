package folio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// frontMatterFormats lists the delimiters recognised at the top of a
// content file: YAML between ---, TOML between +++, JSON between ;;; or as a
// bare object followed by an empty line.
var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", unmarshalYAML),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	frontmatter.NewFormat(";;;", ";;;", json.Unmarshal),
	{Start: "{", End: "}", Unmarshal: json.Unmarshal, UnmarshalDelims: true, RequiresNewLine: true},
}

// errUnterminated is returned for a front-matter block that is opened but
// never closed.
var errUnterminated = errors.New("unterminated front-matter")

// ParseFrontMatter splits source into its front-matter block and body and
// decodes the block into Meta. A file without front-matter yields an empty
// Meta and the whole text as body.
func ParseFrontMatter(source []byte) (Meta, string, error) {
	if unterminated(source) {
		return Meta{}, "", fmt.Errorf("parse frontmatter: %w", errUnterminated)
	}
	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw, frontMatterFormats...)
	if err != nil {
		return Meta{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return metaFromMap(raw), string(body), nil
}

// unterminated reports whether source opens a delimited block on its first
// non-blank line without a matching closing line.
func unterminated(source []byte) bool {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return false
	}
	open := strings.TrimSpace(lines[i])
	if open != "---" && open != "+++" && open != ";;;" {
		return false
	}
	for _, line := range lines[i+1:] {
		if strings.TrimSpace(line) == open {
			return false
		}
	}
	return true
}

// unmarshalYAML decodes YAML with timestamps kept as the text written, so
// DateRaw matches the source.
func unmarshalYAML(data []byte, v any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return nil
	}
	untagTimestamps(&doc)
	return doc.Decode(v)
}

func untagTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		untagTimestamps(c)
	}
}

func metaFromMap(raw map[string]any) Meta {
	m := Meta{Extra: map[string]any{}}
	for key, value := range raw {
		switch strings.ToLower(key) {
		case "title":
			m.Title = strings.TrimSpace(cast.ToString(value))
		case "date":
			m.Date, m.DateRaw = parseDate(value)
		case "description":
			m.Description = strings.TrimSpace(cast.ToString(value))
		case "image", "ogimage":
			if m.Image == "" {
				m.Image = strings.TrimSpace(cast.ToString(value))
			}
		case "slug":
			m.Slug = strings.Trim(strings.TrimSpace(cast.ToString(value)), "/")
		case "tags":
			m.Tags = parseTags(value)
		case "draft":
			m.Draft = cast.ToBool(value)
		default:
			m.Extra[key] = normalizeValue(value)
		}
	}
	return m
}

// parseDate returns the parsed time (zero if it cannot be parsed) and the
// value as written.
func parseDate(value any) (time.Time, string) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, ""
	case time.Time:
		return v, v.Format(time.RFC3339)
	}
	raw, err := cast.ToStringE(value)
	if err != nil {
		raw = fmt.Sprint(value)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ""
	}
	t, err := cast.ToTimeE(raw)
	if err != nil {
		return time.Time{}, raw
	}
	return t, raw
}

func parseTags(value any) []string {
	var tags []string
	if s, ok := value.(string); ok {
		tags = strings.Split(s, ",")
	} else {
		tags = cast.ToStringSlice(value)
	}
	return FilterEmpty(tags)
}

// normalizeValue converts nested maps to map[string]any so Extra is safe to
// encode as JSON regardless of which decoder produced it.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = normalizeValue(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = normalizeValue(v[i])
		}
		return out
	default:
		return v
	}
}
