// Package markdown renders article bodies to HTML with goldmark and exposes
// the result as templ components.
package markdown

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	_ "golang.org/x/image/webp"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// Option configures a Renderer.
type Option func(*Renderer)

// WithSiteURL marks links to hosts other than siteURL's as external.
func WithSiteURL(siteURL string) Option {
	return func(r *Renderer) {
		if u, err := url.Parse(siteURL); err == nil {
			r.host = strings.ToLower(u.Hostname())
		}
	}
}

// WithImageRoot lets the renderer read image headers from fsys. Image
// destinations under prefix (e.g. "/public/") and relative ones are resolved
// inside fsys.
func WithImageRoot(fsys fs.FS, prefix string) Option {
	return func(r *Renderer) {
		r.images = fsys
		r.imagePrefix = prefix
	}
}

// WithMaxImageWidth reports JPEG and PNG images wider than n at the size
// the static build scales them to.
func WithMaxImageWidth(n int) Option {
	return func(r *Renderer) {
		r.maxWidth = n
	}
}

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md          goldmark.Markdown
	host        string
	images      fs.FS
	imagePrefix string
	maxWidth    int
}

// New returns a Renderer with GFM, footnotes, smart punctuation and heading
// IDs enabled. Raw HTML in the source is passed through.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&linkTransformer{r: r}, 100)),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return r
}

var defaultRenderer = New()

// Render returns the HTML for source.
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Component returns a templ.Component that renders source as HTML.
func (r *Renderer) Component(source string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return r.md.Convert([]byte(source), w)
	})
}

// Markdown returns a templ.Component that renders md as HTML with the
// default renderer.
func Markdown(content string) templ.Component {
	return defaultRenderer.Component(content)
}

// linkTransformer adjusts links and images after parsing: dangerous link
// targets are neutralised, external links open in a new tab and images get
// lazy loading plus intrinsic dimensions when the file can be read.
type linkTransformer struct {
	r *Renderer
}

func (t *linkTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			if html.IsDangerousURL(v.Destination) {
				v.Destination = []byte("#")
				return ast.WalkContinue, nil
			}
			if t.r.isExternal(string(v.Destination)) {
				v.SetAttributeString("target", []byte("_blank"))
				v.SetAttributeString("rel", []byte("nofollow noopener"))
			}
		case *ast.AutoLink:
			if v.AutoLinkType == ast.AutoLinkURL && t.r.isExternal(string(v.URL(reader.Source()))) {
				v.SetAttributeString("target", []byte("_blank"))
				v.SetAttributeString("rel", []byte("nofollow noopener"))
			}
		case *ast.Image:
			v.SetAttributeString("loading", []byte("lazy"))
			v.SetAttributeString("decoding", []byte("async"))
			if w, h, ok := t.r.imageSize(string(v.Destination)); ok {
				v.SetAttributeString("width", []byte(strconv.Itoa(w)))
				v.SetAttributeString("height", []byte(strconv.Itoa(h)))
			}
		}
		return ast.WalkContinue, nil
	})
}

func (r *Renderer) isExternal(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return r.host == "" || !strings.EqualFold(u.Hostname(), r.host)
}

func (r *Renderer) imageSize(dest string) (int, int, bool) {
	if r.images == nil {
		return 0, 0, false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return 0, 0, false
	}
	name := u.Path
	switch {
	case r.imagePrefix != "" && strings.HasPrefix(name, r.imagePrefix):
		name = strings.TrimPrefix(name, r.imagePrefix)
	case strings.HasPrefix(name, "/"):
		return 0, 0, false
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(name) {
		return 0, 0, false
	}
	f, err := r.images.Open(name)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		if r.maxWidth > 0 && cfg.Width > r.maxWidth {
			return r.maxWidth, max(cfg.Height*r.maxWidth/cfg.Width, 1), true
		}
	}
	return cfg.Width, cfg.Height, true
}

var plainParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// PlainText strips Markdown syntax and raw HTML from source, leaving the
// words separated by single spaces.
func PlainText(source string) string {
	src := []byte(source)
	doc := plainParser.Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// Excerpt returns at most n runes of source's plain text, cut at a word
// boundary and marked with an ellipsis when shortened.
func Excerpt(source string, n int) string {
	plain := PlainText(source)
	if n <= 0 || utf8.RuneCountInString(plain) <= n {
		return plain
	}
	runes := []rune(plain)
	cut := string(runes[:n])
	if runes[n] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:!?-") + "…"
}

// ReadingTime estimates minutes to read source, never less than one.
func ReadingTime(source string) int {
	words := len(strings.Fields(PlainText(source)))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
