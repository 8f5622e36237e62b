package views

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// html accumulates markup and keeps the first write error, so components can
// be written as straight-line code.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *html) raw(s ...string) {
	for _, part := range s {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, part)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (h *html) href(url string) {
	h.attr("href", string(templ.URL(url)))
}

func (h *html) render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// component adapts a writer function to templ.Component.
func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag active"
	}
	return "tag"
}

// TagURL links to the article list filtered by tag.
func TagURL(tag string) string {
	return "/articles/?tag=" + url.QueryEscape(tag)
}

// JoinTags formats a tag slice for display.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// ReadingTime formats minutes as "N min read".
func ReadingTime(minutes int) string {
	if minutes <= 1 {
		return "1 min read"
	}
	return strconv.Itoa(minutes) + " min read"
}
