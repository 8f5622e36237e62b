package markdown

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"
)

func render(t *testing.T, r *Renderer, src string) string {
	t.Helper()
	out, err := r.Render(src)
	if err != nil {
		t.Fatalf("Render(%q): %v", src, err)
	}
	return out
}

func TestRenderHeadingsGetIDs(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Title", `<h1 id="title">Title</h1>`},
		{"## Hello World", `<h2 id="hello-world">Hello World</h2>`},
		{"### Third", `<h3 id="third">Third</h3>`},
	}
	r := New()
	for _, tt := range tests {
		got := render(t, r, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderExternalLinksOpenInNewTab(t *testing.T) {
	r := New(WithSiteURL("https://example.com"))
	tests := []struct {
		input    string
		external bool
	}{
		{"[other](https://golang.org/doc/)", true},
		{"[same](https://example.com/articles/foo/)", false},
		{"[relative](/about/)", false},
		{"<https://golang.org>", true},
	}
	for _, tt := range tests {
		got := render(t, r, tt.input)
		hasTarget := strings.Contains(got, `target="_blank"`) && strings.Contains(got, `rel="nofollow noopener"`)
		if hasTarget != tt.external {
			t.Errorf("Render(%q) = %q, external=%v", tt.input, got, tt.external)
		}
	}
}

func TestRenderNeutralisesDangerousLinks(t *testing.T) {
	got := render(t, New(), "[x](javascript:alert(1))")
	if strings.Contains(got, "javascript:") {
		t.Errorf("dangerous href survived: %q", got)
	}
	if !strings.Contains(got, `href="#"`) {
		t.Errorf("expected href=#, got %q", got)
	}
}

func TestRenderImageDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatal(err)
	}
	fsys := fstest.MapFS{"img/dot.png": {Data: buf.Bytes()}}
	r := New(WithImageRoot(fsys, "/public/"))

	got := render(t, r, "![dot](/public/img/dot.png)")
	for _, want := range []string{`width="4"`, `height="2"`, `loading="lazy"`, `alt="dot"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Render = %q, missing %s", got, want)
		}
	}

	got = render(t, r, "![missing](/public/img/none.png)")
	if strings.Contains(got, "width=") {
		t.Errorf("missing image should have no size: %q", got)
	}
	if !strings.Contains(got, `loading="lazy"`) {
		t.Errorf("missing lazy loading: %q", got)
	}
}

func TestRenderPassesRawHTML(t *testing.T) {
	got := render(t, New(), "<div class=\"note\">hi</div>\n")
	if !strings.Contains(got, `<div class="note">hi</div>`) {
		t.Errorf("raw HTML was escaped: %q", got)
	}
}

func TestRenderSmartQuotes(t *testing.T) {
	got := render(t, New(), `He said "hello".`)
	if !strings.Contains(got, "&ldquo;hello&rdquo;") {
		t.Errorf("Render = %q, want curly quotes", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, New(), "| a | b |\n|---|---|\n| 1 | 2 |\n")
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("table not rendered: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**bold**").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("Markdown component = %q", got)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Title\n\nSome **bold** text.", "Title Some bold text."},
		{"A [link](https://x.y) here", "A link here"},
		{"line one\nline two", "line one line two"},
		{"before\n\n```go\nfmt.Println()\n```\n\nafter", "before after"},
		{"<div>raw</div>\n\ntext", "text"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.input); got != tt.expected {
			t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		input    string
		n        int
		expected string
	}{
		{"short text", 160, "short text"},
		{"one two three four", 9, "one two…"},
		{"one two, three", 8, "one two…"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.input, tt.n); got != tt.expected {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
		}
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words    int
		expected int
	}{
		{0, 1},
		{10, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		src := strings.Repeat("word ", tt.words)
		if got := ReadingTime(src); got != tt.expected {
			t.Errorf("ReadingTime(%d words) = %d, want %d", tt.words, got, tt.expected)
		}
	}
}
