// Package discovery walks a materialized workspace tree and returns the
// deterministic ordered list of text-bearing files eligible for
// ingestion.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pipewise/repokb/internal/logger"
)

// DefaultAllowedExtensions is the reference allow-list of text-bearing
// file extensions. Anything else is treated as non-text and skipped.
var DefaultAllowedExtensions = []string{
	".js", ".ts", ".tsx", ".jsx", ".json", ".md", ".yml", ".yaml",
	".sql", ".sh", ".html", ".css", ".scss", ".xml",
}

// DefaultDenyPatterns is the reference deny-list for generated and
// noisy artifacts: package-manager lockfiles, vendored dependencies,
// version-control metadata and build output.
var DefaultDenyPatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Gemfile.lock",
	"go.sum",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"coverage/**",
	"vendor/**",
}

// Discoverer applies include/exclude rules to a workspace tree.
type Discoverer struct {
	allowedExts  map[string]struct{}
	denyPatterns []string
	includeGlobs []string
	excludeGlobs []string
}

// Option configures the discoverer.
type Option func(*Discoverer)

// WithAllowedExtensions replaces the extension allow-list.
func WithAllowedExtensions(exts []string) Option {
	return func(d *Discoverer) {
		if len(exts) == 0 {
			return
		}
		d.allowedExts = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			d.allowedExts[strings.ToLower(ext)] = struct{}{}
		}
	}
}

// WithDenyPatterns replaces the deny-pattern list. Patterns use
// doublestar glob syntax and are matched against the relative path and
// the basename.
func WithDenyPatterns(patterns []string) Option {
	return func(d *Discoverer) {
		if len(patterns) > 0 {
			d.denyPatterns = patterns
		}
	}
}

// WithIncludeGlobs restricts discovery to paths matching at least one
// of the given globs.
func WithIncludeGlobs(globs []string) Option {
	return func(d *Discoverer) {
		d.includeGlobs = globs
	}
}

// WithExcludeGlobs skips paths matching any of the given globs, on top
// of the deny patterns.
func WithExcludeGlobs(globs []string) Option {
	return func(d *Discoverer) {
		d.excludeGlobs = globs
	}
}

// New creates a discoverer with the reference filtering rules.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		denyPatterns: DefaultDenyPatterns,
	}
	WithAllowedExtensions(DefaultAllowedExtensions)(d)

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Discover walks root and returns the eligible files as slash-separated
// relative paths, sorted lexically. The lexical ordering makes repeated
// discovery of an unchanged tree produce an identical sequence, which
// the position-derived vector ID scheme depends on.
//
// Unreadable entries are logged and skipped; an empty result is not an
// error.
func (d *Discoverer) Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %q is not a directory", root)
	}

	var paths []string

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping unreadable entry %s: %v", path, err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if entry.IsDir() {
			if d.deniedDir(rel) {
				logger.Debug("Excluded directory: %s", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		if d.eligible(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk workspace: %w", walkErr)
	}

	sort.Strings(paths)
	logger.Debug("Discovered %d eligible files under %s", len(paths), root)
	return paths, nil
}

// eligible reports whether a relative file path passes every filter.
func (d *Discoverer) eligible(rel string) bool {
	if _, ok := d.allowedExts[strings.ToLower(filepath.Ext(rel))]; !ok {
		return false
	}

	if d.matchesAny(d.denyPatterns, rel) {
		logger.Debug("Excluded by deny pattern: %s", rel)
		return false
	}
	if len(d.excludeGlobs) > 0 && d.matchesAny(d.excludeGlobs, rel) {
		logger.Debug("Excluded by glob: %s", rel)
		return false
	}
	if len(d.includeGlobs) > 0 && !d.matchesAny(d.includeGlobs, rel) {
		return false
	}

	return true
}

// deniedDir reports whether a directory subtree is wholly excluded.
// A pattern "node_modules/**" prunes a node_modules directory at any
// depth, so the walk never descends into it.
func (d *Discoverer) deniedDir(rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range d.denyPatterns {
		dir, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		dir = strings.TrimPrefix(dir, "**/")
		if dir == base || dir == rel {
			return true
		}
	}
	return false
}

// matchesAny reports whether the path matches any pattern, against the
// full relative path or its basename.
func (d *Discoverer) matchesAny(patterns []string, rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
