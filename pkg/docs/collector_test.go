package docs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewCollector(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewCollector("docs")
		require.NoError(t, err)
		assert.Equal(t, "docs", c.Root())
		assert.Equal(t, DefaultPattern, c.pattern)
		assert.Equal(t, DefaultExcludes, c.excludes)
		assert.True(t, c.fingerprints)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewCollector("docs", WithPattern("[unclosed"))
		assert.Error(t, err)
	})
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rfcs/b.md", rfcDocument)
	writeFile(t, root, "guides/a.md", rfcDocument)
	writeFile(t, root, "_inbox/c.md", "---\ntitle: Inbox\n---\nsome inbox text\n")
	writeFile(t, root, "plain.md", "# No front matter\n")
	writeFile(t, root, "broken.md", "---\ntitle: [oops\n---\n")
	writeFile(t, root, "notes.txt", rfcDocument)
	writeFile(t, root, "index/registry.md", rfcDocument)
	writeFile(t, root, "archive/old.md", rfcDocument)

	c, err := NewCollector(root)
	require.NoError(t, err)

	documents, err := c.Collect(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, doc := range documents {
		paths = append(paths, doc.Path)
	}
	assert.Equal(t, []string{"_inbox/c.md", "guides/a.md", "rfcs/b.md"}, paths)

	doc := documents[2]
	assert.Equal(t, ContentHash(rfcDocument), doc.ContentHash)
	assert.Len(t, doc.ContentHash, 64)
	assert.Equal(t, rfcDocument, doc.Content)
	require.NotNil(t, doc.Fingerprint)
	assert.True(t, documents[0].InSegment("_inbox"))
	assert.False(t, doc.InSegment("_inbox"))
}

func TestCollectIsDeterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"z.md", "m/a.md", "a.md", "m/z.md"} {
		writeFile(t, root, name, rfcDocument)
	}

	c, err := NewCollector(root)
	require.NoError(t, err)

	first, err := c.Collect(context.Background())
	require.NoError(t, err)
	second, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 4)
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
		assert.Equal(t, first[i].ContentHash, second[i].ContentHash)
		assert.Equal(t, *first[i].Fingerprint, *second[i].Fingerprint)
	}
}

func TestCollectCustomExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index/test.md", rfcDocument)
	writeFile(t, root, "archive/test.md", rfcDocument)
	writeFile(t, root, "drafts/test.md", rfcDocument)
	writeFile(t, root, "test.md", rfcDocument)

	c, err := NewCollector(root, WithExcludes("drafts/"))
	require.NoError(t, err)

	documents, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 3)
	for _, doc := range documents {
		assert.NotContains(t, doc.Path, "drafts")
	}
}

func TestCollectWithoutFingerprints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", rfcDocument)

	c, err := NewCollector(root, WithFingerprints(false))
	require.NoError(t, err)

	documents, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Nil(t, documents[0].Fingerprint)
}

func TestCollectSkipsInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.md", "---\ntitle: \xff\xfe\n---\n")

	c, err := NewCollector(root)
	require.NoError(t, err)

	documents, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, documents)
}

func TestCollectMissingRoot(t *testing.T) {
	c, err := NewCollector(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	_, err = c.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documentation directory not found")
}
