package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/validation"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var fixedTime = time.Date(2025, 11, 14, 9, 30, 0, 0, time.UTC)

func corpusDoc(id, title, docType, body string) string {
	return fmt.Sprintf(`---
doc_id: %s
title: %q
doc_type: %s
status: active
canonical: true
created: 2025-11-14
tags: [docs]
summary: A document
---

%s
`, id, title, docType, body)
}

func inboxDoc(title, body string) string {
	return fmt.Sprintf(`---
title: %q
doc_type: rfc
status: draft
created: 2025-11-20
---

%s
`, title, body)
}

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestRunner lays out a valid corpus with one inbox submission
func newTestRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	root := t.TempDir()

	writeDoc(t, root, "adrs/storage.md", corpusDoc("ADR-2025-00001", "Storage Layout", "adr",
		"Documents are stored as markdown files under a versioned tree."))
	writeDoc(t, root, "rfcs/plugins.md", corpusDoc("RFC-2025-00012", "Plugin System", "rfc",
		"Plugins are discovered at startup and loaded into isolated contexts."))
	writeDoc(t, root, "_inbox/plugins.md", inboxDoc("Plugin Systems",
		"A proposal for hot reloading of extension modules."))
	writeDoc(t, root, "notes/scratch.md", "# no front matter here\n")

	cfg := DefaultConfig()
	cfg.DocsDir = root
	cfg.RegistryPath = filepath.Join(root, "index", "registry.json")

	r, err := New(cfg, WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, err)
	return r, root
}

func TestRunGenerate(t *testing.T) {
	r, _ := newTestRunner(t)

	result, err := r.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode())
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Documents, 3)
	assert.True(t, result.RegistryWritten)
	assert.Empty(t, result.Notices)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "_inbox/plugins.md", result.Warnings[0].Path)
	assert.Contains(t, result.Warnings[0].Message, "resembles corpus rfcs/plugins.md")

	data, err := os.ReadFile(r.Config().RegistryPath)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-14T09:30:00.000000Z", gjson.GetBytes(data, "generated_at").String())
	assert.EqualValues(t, 3, gjson.GetBytes(data, "total_docs").Int())
	assert.EqualValues(t, 2, gjson.GetBytes(data, "by_type.rfc").Int())
	assert.Equal(t, "_inbox/plugins.md", gjson.GetBytes(data, "docs.0.path").String())
	assert.Equal(t, "Storage Layout", gjson.GetBytes(data, "docs.1.title").String())
}

func TestRunGateLeavesRegistryUntouched(t *testing.T) {
	r, root := newTestRunner(t)

	previous := []byte("{\"generated_at\": \"2025-01-01T00:00:00.000000Z\"}\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(r.Config().RegistryPath), 0o755))
	require.NoError(t, os.WriteFile(r.Config().RegistryPath, previous, 0o644))

	writeDoc(t, root, "guides/broken.md", "---\ntitle: Broken\ndoc_type: memo\n---\nbody\n")

	result, err := r.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ExitCode())
	assert.False(t, result.RegistryWritten)
	assert.Nil(t, result.Registry)

	data, err := os.ReadFile(r.Config().RegistryPath)
	require.NoError(t, err)
	assert.Equal(t, previous, data)
}

func TestRunPreCommit(t *testing.T) {
	r, _ := newTestRunner(t)

	result, err := r.Run(context.Background(), ModePreCommit)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode())
	assert.False(t, result.RegistryWritten)
	assert.NoFileExists(t, r.Config().RegistryPath)
}

func TestRunCheck(t *testing.T) {
	r, root := newTestRunner(t)

	t.Run("missing registry is stale", func(t *testing.T) {
		result, err := r.Run(context.Background(), ModeCheck)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ExitCode())
		require.Len(t, result.Errors, 1)
		assert.Equal(t, r.Config().RegistryPath, result.Errors[0].Path)
		require.NotNil(t, result.Comparison)
		assert.False(t, result.Comparison.Exists)
		assert.NoFileExists(t, r.Config().RegistryPath)
	})

	_, err := r.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	t.Run("up to date at a later time", func(t *testing.T) {
		later, err := New(r.Config(), WithClock(func() time.Time { return fixedTime.Add(48 * time.Hour) }))
		require.NoError(t, err)

		result, err := later.Run(context.Background(), ModeCheck)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode())
		require.NotNil(t, result.Comparison)
		assert.True(t, result.Comparison.UpToDate())
		assert.False(t, result.RegistryWritten)
	})

	t.Run("edited document makes it stale", func(t *testing.T) {
		before, err := os.ReadFile(r.Config().RegistryPath)
		require.NoError(t, err)

		writeDoc(t, root, "adrs/storage.md", corpusDoc("ADR-2025-00001", "Storage Layout", "adr",
			"Documents are now stored in a database."))

		result, err := r.Run(context.Background(), ModeCheck)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ExitCode())
		require.NotNil(t, result.Comparison)
		assert.Contains(t, result.Comparison.Diff, `"sha256"`)

		after, err := os.ReadFile(r.Config().RegistryPath)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestRunFindingsSortedByPath(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "d.md", corpusDoc("RFC-2025-00004", "plugin system!", "rfc", "Second take."))
	writeDoc(t, root, "c.md", corpusDoc("RFC-2025-00003", "Plugin System", "rfc", "First take."))
	writeDoc(t, root, "b.md", "---\ntitle: Only a title\n---\n")
	writeDoc(t, root, "a.md", corpusDoc("RFC-2025-00001", "Alpha", "memo", "Alpha body."))

	cfg := DefaultConfig()
	cfg.DocsDir = root
	cfg.RegistryPath = filepath.Join(root, "index", "registry.json")
	r, err := New(cfg)
	require.NoError(t, err)

	result, err := r.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	var paths []string
	for _, f := range result.Errors {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, paths)
	assert.Contains(t, result.Errors[2].Message, "Multiple canonical documents for concept 'plugin system'")
	assert.NoFileExists(t, cfg.RegistryPath)
}

func TestRunMissingDocsDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DocsDir = filepath.Join(t.TempDir(), "nope")

	r, err := New(cfg)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), ModeGenerate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documentation directory not found")
}

func TestRunCapabilitiesDisabled(t *testing.T) {
	r, root := newTestRunner(t)
	cfg := r.Config()
	cfg.Similarity.Fingerprint = false
	cfg.Similarity.FuzzyTitles = false

	r, err := New(cfg)
	require.NoError(t, err)

	result, err := r.Run(context.Background(), ModePreCommit)
	require.NoError(t, err)

	assert.Len(t, result.Notices, 2)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, validation.SystemPath, result.Warnings[0].Path)
	for _, doc := range result.Documents {
		assert.Nil(t, doc.Fingerprint, doc.Path)
	}
	assert.DirExists(t, root)
}

func TestNewRejectsInvalidRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.DocTypes = nil
	cfg.Rules.DocIDPattern = "("

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc_types must not be empty")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "generate", ModeGenerate.String())
	assert.Equal(t, "pre-commit", ModePreCommit.String())
	assert.Equal(t, "check", ModeCheck.String())
}

func TestConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Run("defaults", func(t *testing.T) {
		SetViperDefaults()
		cfg, err := ConfigFromViper()
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("overrides merge with defaults", func(t *testing.T) {
		viper.Set("docs_dir", "documentation")
		viper.Set("exclude", []string{"drafts/"})
		viper.Set("rules.statuses", []string{"draft", "final"})
		viper.Set("similarity.title_threshold", 90)

		cfg, err := ConfigFromViper()
		require.NoError(t, err)
		assert.Equal(t, "documentation", cfg.DocsDir)
		assert.Equal(t, []string{"drafts/"}, cfg.Excludes)
		assert.Equal(t, []string{"draft", "final"}, cfg.Rules.Statuses)
		assert.Equal(t, validation.DefaultRules().DocTypes, cfg.Rules.DocTypes)
		assert.Equal(t, 90, cfg.Similarity.TitleThreshold)
		assert.True(t, cfg.Similarity.Fingerprint)
	})
}

func TestValidateStopsOnCancelledContext(t *testing.T) {
	r, _ := newTestRunner(t)

	documents, err := r.collector.Collect(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.validate(ctx, documents)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWritesUnquotedDatesVerbatim(t *testing.T) {
	r, _ := newTestRunner(t)

	result, err := r.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	data, err := os.ReadFile(r.Config().RegistryPath)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-20", gjson.GetBytes(data, "docs.0.created").String())
	assert.Equal(t, "2025-11-14", gjson.GetBytes(data, "docs.1.created").String())
}
