package docs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/logger"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

const (
	// DefaultPattern matches every markdown file below the root
	DefaultPattern = "**/*.md"
)

// DefaultExcludes are the generated-index and archive subtrees
var DefaultExcludes = []string{"index/", "archive/"}

// Collector walks a docs root and loads every managed document
type Collector struct {
	root         string
	pattern      string
	excludes     []string
	fingerprints bool
}

// Option is a function that configures a Collector
type Option func(*Collector) error

// WithPattern sets the doublestar pattern used to select files
func WithPattern(pattern string) Option {
	return func(c *Collector) error {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid file pattern '%s'", pattern)
		}
		c.pattern = pattern
		return nil
	}
}

// WithExcludes replaces the path-substring exclusion list
func WithExcludes(patterns ...string) Option {
	return func(c *Collector) error {
		c.excludes = patterns
		return nil
	}
}

// WithFingerprints toggles simhash computation for every collected document
func WithFingerprints(enabled bool) Option {
	return func(c *Collector) error {
		c.fingerprints = enabled
		return nil
	}
}

// NewCollector creates a collector rooted at root
func NewCollector(root string, opts ...Option) (*Collector, error) {
	c := &Collector{
		root:         root,
		pattern:      DefaultPattern,
		excludes:     DefaultExcludes,
		fingerprints: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Root returns the directory the collector walks
func (c *Collector) Root() string {
	return c.root
}

// Collect returns the documents with front matter, sorted by path. Files that
// cannot be read or whose front matter does not parse are logged and skipped.
func (c *Collector) Collect(ctx context.Context) ([]*Document, error) {
	info, err := os.Stat(c.root)
	if err != nil {
		return nil, errors.Wrapf(err, "documentation directory not found: %s", c.root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("documentation path is not a directory: %s", c.root)
	}

	var paths []string
	err = doublestar.GlobWalk(os.DirFS(c.root), c.pattern, func(path string, d fs.DirEntry) error {
		if d.IsDir() || c.excluded(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", c.root)
	}
	sort.Strings(paths)

	documents := make([]*Document, 0, len(paths))
	for _, path := range paths {
		doc, err := c.load(path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", path).Warn("skipping document")
			continue
		}
		if doc == nil {
			logger.G(ctx).WithField("path", path).Debug("no front matter, not a managed document")
			continue
		}
		documents = append(documents, doc)
	}

	logger.G(ctx).WithField("count", len(documents)).Debug("collected documents")
	return documents, nil
}

func (c *Collector) excluded(path string) bool {
	for _, pattern := range c.excludes {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func (c *Collector) load(path string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("file is not valid UTF-8")
	}
	content := string(data)

	meta, fm, err := ParseFrontMatter(content)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	doc := &Document{
		Path:        path,
		Metadata:    meta,
		Content:     content,
		ContentHash: ContentHash(content),
	}
	if c.fingerprints {
		if fp, ok := Fingerprint(fm.Body); ok {
			doc.Fingerprint = &fp
		}
	}
	return doc, nil
}
