package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file (and its parents) under root.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.js", "function main(){}\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "config.yml", "a: 1\n")
	writeFile(t, root, "logo.png", "binary")
	writeFile(t, root, "main.go", "package main\n")

	paths, err := New().Discover(root)

	require.NoError(t, err)
	// Sorted lexically; .png and .go are not in the allow-list.
	assert.Equal(t, []string{"README.md", "config.yml", "src/app.js"}, paths)
}

func TestDiscoverDenyRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package-lock.json", "{}")
	writeFile(t, root, "node_modules/x.js", "module.exports = {}")
	writeFile(t, root, ".git/config", "[core]")
	writeFile(t, root, "dist/bundle.js", "!function(){}")
	writeFile(t, root, "deep/node_modules/y.js", "module.exports = {}")

	paths, err := New().Discover(root)

	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDiscoverDeterministicOrdering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "a/z.js", "z")
	writeFile(t, root, "a/a.js", "a")
	writeFile(t, root, "c.json", "{}")

	first, err := New().Discover(root)
	require.NoError(t, err)
	second, err := New().Discover(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a/a.js", "a/z.js", "b.md", "c.json"}, first)
}

func TestDiscoverIncludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "let a = 1")
	writeFile(t, root, "docs/guide.md", "# guide")

	paths, err := New(WithIncludeGlobs([]string{"src/**"})).Discover(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.ts"}, paths)
}

func TestDiscoverExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "let a = 1")
	writeFile(t, root, "src/app.test.ts", "test")

	paths, err := New(WithExcludeGlobs([]string{"**/*.test.ts"})).Discover(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.ts"}, paths)
}

func TestDiscoverCustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "app.js", "let a = 1")

	paths, err := New(WithAllowedExtensions([]string{".go"})).Discover(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestDiscoverEmptyWorkspace(t *testing.T) {
	paths, err := New().Discover(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := New().Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDiscoverRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.md", "x")

	_, err := New().Discover(filepath.Join(root, "file.md"))
	assert.Error(t, err)
}
