package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateSlug is returned by Load when two content files resolve to the
// same slug.
var ErrDuplicateSlug = errors.New("folio: duplicate slug")

// DefaultPatterns match flat files in the content root and one
// index file per subdirectory.
var DefaultPatterns = []string{"*.md", "*.mdx", "*/index.md", "*/index.mdx"}

// LoaderConfig controls discovery and filtering.
type LoaderConfig struct {
	Patterns      []string // glob patterns relative to the root; DefaultPatterns when empty
	RequireDate   bool     // drop records without a date
	IncludeDrafts bool
	Concurrency   int // parallel reads; 8 when zero
	Logger        Logger
}

// Loader turns a tree of content files into a sorted article collection.
// A Loader holds no state between calls and is safe for concurrent use.
type Loader struct {
	fsys fs.FS
	cfg  LoaderConfig
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Loader{fsys: fsys, cfg: cfg}
}

// Skipped describes a content file left out of a load.
type Skipped struct {
	Path   string
	Slug   string
	Reason string
}

// LoadResult is the outcome of a load including what was filtered out.
type LoadResult struct {
	Articles []Article
	Skipped  []Skipped
	Drafts   int
}

// Load discovers, parses, validates and sorts all content files. Records
// failing validation are dropped with a warning; drafts are dropped unless
// configured otherwise. A missing root yields an empty result.
func (l *Loader) Load(ctx context.Context) ([]Article, error) {
	res, err := l.LoadReport(ctx)
	if err != nil {
		return nil, err
	}
	return res.Articles, nil
}

// LoadReport is Load with the filtered records reported.
func (l *Loader) LoadReport(ctx context.Context) (LoadResult, error) {
	paths, err := l.discover()
	if err != nil {
		return LoadResult{}, err
	}

	loaded := make([]Article, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := l.read(p)
			if err != nil {
				return err
			}
			loaded[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}

	var res LoadResult
	seen := make(map[string]string, len(loaded))
	for _, a := range loaded {
		if err := l.validate(a); err != nil {
			name := a.Slug
			if name == "" {
				name = a.Path
			}
			l.cfg.Logger.Warnf("folio: skipping %s: %v", name, err)
			res.Skipped = append(res.Skipped, Skipped{Path: a.Path, Slug: a.Slug, Reason: err.Error()})
			continue
		}
		if a.Meta.Draft && !l.cfg.IncludeDrafts {
			l.cfg.Logger.Debugf("folio: draft %s excluded", a.Slug)
			res.Drafts++
			continue
		}
		if prev, ok := seen[a.Slug]; ok {
			return LoadResult{}, fmt.Errorf("%w %q: %s and %s", ErrDuplicateSlug, a.Slug, prev, a.Path)
		}
		seen[a.Slug] = a.Path
		res.Articles = append(res.Articles, a)
	}

	slices.SortStableFunc(res.Articles, func(a, b Article) int {
		return b.Meta.Date.Compare(a.Meta.Date)
	})
	return res, nil
}

// discover returns the matched paths, deduplicated, in lexical order.
func (l *Loader) discover() ([]string, error) {
	var paths []string
	for _, pattern := range l.cfg.Patterns {
		matches, err := fs.Glob(l.fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("folio: bad pattern %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func (l *Loader) read(p string) (Article, error) {
	source, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Article{}, fmt.Errorf("folio: read %s: %w", p, err)
	}
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return Article{}, fmt.Errorf("folio: load %s: %w", p, err)
	}
	slug := meta.Slug
	if slug == "" {
		slug = SlugFromPath(path.Clean(p))
	}
	return Article{Slug: slug, Path: p, Meta: meta, Contents: body}, nil
}

// record is the subset of an article checked before it is accepted.
type record struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Slug  string `json:"slug"`
}

func (l *Loader) validate(a Article) error {
	r := record{Title: a.Meta.Title, Date: a.Meta.DateRaw, Slug: a.Slug}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Date, validation.When(l.cfg.RequireDate, validation.Required)),
		validation.Field(&r.Slug, validation.Required),
	)
}
