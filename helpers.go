package folio

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var indexSuffix = regexp.MustCompile(`(/index)?\.mdx?$`)

// SlugFromPath derives a slug from a content path relative to the content
// root: "foo.mdx" -> "foo", "articles/foo/index.mdx" -> "articles/foo".
func SlugFromPath(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(rel, "\\", "/")), "/")
	return indexSuffix.ReplaceAllString(rel, "")
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// RootURL returns base with exactly one trailing slash.
func RootURL(base string) string {
	return strings.TrimRight(base, "/") + "/"
}

// AbsoluteURL resolves a site-relative reference against base. Absolute
// references are returned unchanged.
func AbsoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	if !strings.HasSuffix(b.Path, "/") {
		b.Path += "/"
	}
	return b.ResolveReference(&url.URL{Path: strings.TrimPrefix(r.Path, "/"), RawQuery: r.RawQuery}).String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FormatDate renders t the way article cards show it, e.g. "June 1, 2023".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// Adjacent returns the newer and older neighbours of slug in a list sorted
// newest first. Either may be nil.
func Adjacent(articles []Article, slug string) (newer, older *Article) {
	for i := range articles {
		if articles[i].Slug != slug {
			continue
		}
		if i > 0 {
			newer = &articles[i-1]
		}
		if i+1 < len(articles) {
			older = &articles[i+1]
		}
		return newer, older
	}
	return nil, nil
}
