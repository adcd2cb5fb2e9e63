package validation

import (
	"testing"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.NoError(t, rules.Validate())

	assert.ElementsMatch(t, []string{"doc_id", "title", "doc_type", "status", "canonical", "created", "tags", "summary"}, rules.RequiredFields)
	assert.ElementsMatch(t, []string{"spec", "rfc", "adr", "plan", "finding", "guide", "glossary", "reference"}, rules.DocTypes)
	assert.ElementsMatch(t, []string{"draft", "active", "superseded", "rejected", "archived"}, rules.Statuses)

	t.Run("inbox fields are a proper subset", func(t *testing.T) {
		assert.Subset(t, rules.RequiredFields, rules.InboxRequiredFields)
		assert.Less(t, len(rules.InboxRequiredFields), len(rules.RequiredFields))
	})
}

func TestRulesValidateAggregates(t *testing.T) {
	rules := Rules{DocIDPattern: "("}
	err := rules.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "5 errors occurred")
	assert.Contains(t, msg, "doc_types must not be empty")
	assert.Contains(t, msg, "statuses must not be empty")
	assert.Contains(t, msg, "required_fields must not be empty")
	assert.Contains(t, msg, "invalid doc_id_pattern")
	assert.Contains(t, msg, "inbox_segment must not be empty")
}

func TestSimilarityValidate(t *testing.T) {
	require.NoError(t, DefaultSimilarity().Validate())

	err := Similarity{TitleThreshold: 101, HammingThreshold: -1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title_threshold")
	assert.Contains(t, err.Error(), "hamming_threshold")
}

func TestNewRejectsInvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.Statuses = nil
	_, err := New(rules, DefaultSimilarity())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid validation rules")
}

func TestInboxSegment(t *testing.T) {
	rules := DefaultRules()
	rules.InboxSegment = "staging"
	v, err := New(rules, DefaultSimilarity())
	require.NoError(t, err)

	assert.True(t, v.IsInbox(&docs.Document{Path: "staging/a.md"}))
	assert.True(t, v.IsInbox(&docs.Document{Path: "rfcs/staging/a.md"}))
	assert.False(t, v.IsInbox(&docs.Document{Path: "_inbox/a.md"}))
	assert.False(t, v.IsInbox(&docs.Document{Path: "staging.md"}))
}
