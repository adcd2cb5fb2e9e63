package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocuments() []*docs.Document {
	fp := uint64(18446744073709551615)
	return []*docs.Document{
		{
			Path:        "guides/setup.md",
			ContentHash: "aaa",
			Metadata: docs.NewMetadata(
				"doc_id", "GUIDE-2025-00001",
				"title", "Setup <Guide>",
				"doc_type", "guide",
				"status", "active",
				"canonical", true,
				"tags", []string{"setup"},
			),
			Fingerprint: &fp,
		},
		{
			Path:        "rfcs/plugins.md",
			ContentHash: "bbb",
			Metadata: docs.NewMetadata(
				"title", "Plugins",
				"doc_type", "rfc",
				"status", "draft",
				"priority", 2,
			),
		},
		{
			Path:        "rfcs/storage.md",
			ContentHash: "ccc",
			Metadata:    docs.NewMetadata("title", "Storage", "doc_type", "rfc", "status", "active"),
		},
	}
}

var fixedTime = time.Date(2025, 11, 14, 10, 30, 0, 123456000, time.FixedZone("CET", 3600))

func TestBuild(t *testing.T) {
	reg := Build(testDocuments(), fixedTime)

	assert.Equal(t, "2025-11-14T09:30:00.123456Z", reg.GeneratedAt)
	assert.Equal(t, 3, reg.TotalDocs)
	assert.Equal(t, map[string]int{"guide": 1, "rfc": 2}, reg.ByType)
	assert.Equal(t, map[string]int{"active": 2, "draft": 1}, reg.ByStatus)
	require.Len(t, reg.Docs, 3)
	assert.Equal(t, "guides/setup.md", reg.Docs[0].Path)
	assert.Equal(t, "18446744073709551615", reg.Docs[0].Simhash)
	assert.Empty(t, reg.Docs[1].Simhash)
}

func TestBuildEmpty(t *testing.T) {
	data, err := Encode(Build(nil, fixedTime))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"by_type": {}`)
	assert.Contains(t, string(data), `"docs": []`)
}

func TestRecordMarshalJSON(t *testing.T) {
	reg := Build(testDocuments(), fixedTime)

	data, err := reg.Docs[0].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"path":"guides/setup.md","sha256":"aaa","doc_id":"GUIDE-2025-00001","title":"Setup <Guide>","doc_type":"guide","status":"active","canonical":true,"tags":["setup"],"simhash":"18446744073709551615"}`,
		string(data))

	t.Run("colliding key replaces in place", func(t *testing.T) {
		record := Record{Path: "a.md", SHA256: "x", Metadata: docs.NewMetadata("title", "T", "path", "override")}
		data, err := record.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"path":"override","sha256":"x","title":"T"}`, string(data))
	})
}

func TestEncode(t *testing.T) {
	data, err := Encode(Build(testDocuments(), fixedTime))
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasSuffix(text, "}\n"))
	assert.True(t, strings.HasPrefix(text, "{\n  \"generated_at\""))
	assert.Contains(t, text, `"title": "Setup <Guide>"`)
	assert.Contains(t, text, `"priority": 2`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 3, decoded["total_docs"])
}

func TestBuildIsIdempotent(t *testing.T) {
	first, err := Encode(Build(testDocuments(), fixedTime))
	require.NoError(t, err)
	second, err := Encode(Build(testDocuments(), fixedTime.Add(time.Hour)))
	require.NoError(t, err)

	var a, b map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	for _, key := range []string{"by_type", "by_status", "docs", "total_docs"} {
		assert.Equal(t, string(a[key]), string(b[key]), key)
	}
	assert.NotEqual(t, string(a["generated_at"]), string(b["generated_at"]))
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "nested", "registry.json")

	reg := Build(testDocuments(), fixedTime)
	require.NoError(t, Write(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := Encode(reg)
	require.NoError(t, err)
	assert.Equal(t, expected, data)

	t.Run("overwrites wholesale", func(t *testing.T) {
		smaller := Build(testDocuments()[:1], fixedTime)
		require.NoError(t, Write(path, smaller))

		data, err := Read(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "rfcs/plugins.md")
	})
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		data, err := Read(filepath.Join(dir, "missing.json"))
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "registry.json")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
		data, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("{}\n"), data)
	})
}

func TestCompare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := Build(testDocuments(), fixedTime)

	t.Run("missing file", func(t *testing.T) {
		cmp, err := Compare(path, reg)
		require.NoError(t, err)
		assert.False(t, cmp.Exists)
		assert.False(t, cmp.UpToDate())
		assert.Contains(t, cmp.Diff, "+  \"total_docs\": 3,")
	})

	require.NoError(t, Write(path, reg))

	t.Run("up to date ignores timestamp", func(t *testing.T) {
		later := Build(testDocuments(), fixedTime.Add(24*time.Hour))
		cmp, err := Compare(path, later)
		require.NoError(t, err)
		assert.True(t, cmp.UpToDate())
		assert.Equal(t, "2025-11-14T09:30:00.123456Z", cmp.PreviousGeneratedAt)
		assert.Empty(t, cmp.Diff)
	})

	t.Run("stale", func(t *testing.T) {
		documents := testDocuments()
		documents[2].ContentHash = "ddd"
		cmp, err := Compare(path, Build(documents, fixedTime))
		require.NoError(t, err)
		assert.False(t, cmp.UpToDate())
		assert.Contains(t, cmp.Diff, `-      "sha256": "ccc",`)
		assert.Contains(t, cmp.Diff, `+      "sha256": "ddd",`)
	})

	t.Run("invalid json on disk", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := Compare(path, reg)
		assert.Error(t, err)
	})
}

func TestSchema(t *testing.T) {
	text, err := SchemaJSON()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"generated_at", "total_docs", "by_type", "by_status", "docs"} {
		assert.Contains(t, props, key)
	}
	assert.Contains(t, text, "simhash")
	assert.NotContains(t, text, "Metadata")
}

func TestEncodeParsedFrontMatter(t *testing.T) {
	meta, _, err := docs.ParseFrontMatter(`---
title: Odd Values
created: 2025-01-01
reviewed: 2025-01-02T10:00:00Z
related: [{1: a, true: b}]
score: .nan
limits: {max: .inf, min: -.inf}
---
body
`)
	require.NoError(t, err)
	require.NotNil(t, meta)

	reg := Build([]*docs.Document{{Path: "odd.md", ContentHash: "abc", Metadata: meta}}, fixedTime)
	data, err := Encode(reg)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"created": "2025-01-01"`)
	assert.Contains(t, text, `"reviewed": "2025-01-02T10:00:00Z"`)
	assert.Contains(t, text, `"score": "NaN"`)

	var decoded struct {
		Docs []map[string]any `json:"docs"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Docs, 1)
	assert.Equal(t, []any{map[string]any{"1": "a", "true": "b"}}, decoded.Docs[0]["related"])
	assert.Equal(t, map[string]any{"max": "Infinity", "min": "-Infinity"}, decoded.Docs[0]["limits"])
}
