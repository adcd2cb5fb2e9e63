package validation

import (
	"regexp"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Rules holds the vocabularies and patterns documents are checked against.
// It is loaded once per run and never mutated afterwards.
type Rules struct {
	DocTypes            []string `mapstructure:"doc_types" yaml:"doc_types"`
	Statuses            []string `mapstructure:"statuses" yaml:"statuses"`
	RequiredFields      []string `mapstructure:"required_fields" yaml:"required_fields"`
	InboxRequiredFields []string `mapstructure:"inbox_required_fields" yaml:"inbox_required_fields"`
	DocIDPattern        string   `mapstructure:"doc_id_pattern" yaml:"doc_id_pattern"`
	// InboxSegment is the directory name that marks staged submissions
	InboxSegment string `mapstructure:"inbox_segment" yaml:"inbox_segment"`
}

// Similarity configures near-duplicate detection. Fingerprint and FuzzyTitles are
// the capability flags, resolved once at start.
type Similarity struct {
	Fingerprint      bool `mapstructure:"fingerprint" yaml:"fingerprint"`
	FuzzyTitles      bool `mapstructure:"fuzzy_titles" yaml:"fuzzy_titles"`
	TitleThreshold   int  `mapstructure:"title_threshold" yaml:"title_threshold"`
	HammingThreshold int  `mapstructure:"hamming_threshold" yaml:"hamming_threshold"`
}

// DefaultRules returns the rules used when nothing is configured
func DefaultRules() Rules {
	return Rules{
		DocTypes:            []string{"spec", "rfc", "adr", "plan", "finding", "guide", "glossary", "reference"},
		Statuses:            []string{"draft", "active", "superseded", "rejected", "archived"},
		RequiredFields:      []string{docs.FieldDocID, docs.FieldTitle, docs.FieldDocType, docs.FieldStatus, docs.FieldCanonical, docs.FieldCreated, docs.FieldTags, docs.FieldSummary},
		InboxRequiredFields: []string{docs.FieldTitle, docs.FieldDocType, docs.FieldStatus, docs.FieldCreated},
		DocIDPattern:        `^[A-Z]+-\d{4}-\d{5}$`,
		InboxSegment:        "_inbox",
	}
}

// DefaultSimilarity enables both capabilities with the standard thresholds
func DefaultSimilarity() Similarity {
	return Similarity{
		Fingerprint:      true,
		FuzzyTitles:      true,
		TitleThreshold:   80,
		HammingThreshold: 8,
	}
}

// Validate reports every problem with the rules at once
func (r Rules) Validate() error {
	var result *multierror.Error

	if len(r.DocTypes) == 0 {
		result = multierror.Append(result, errors.New("doc_types must not be empty"))
	}
	if len(r.Statuses) == 0 {
		result = multierror.Append(result, errors.New("statuses must not be empty"))
	}
	if len(r.RequiredFields) == 0 {
		result = multierror.Append(result, errors.New("required_fields must not be empty"))
	}
	if _, err := regexp.Compile(r.DocIDPattern); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "invalid doc_id_pattern"))
	}
	if r.InboxSegment == "" {
		result = multierror.Append(result, errors.New("inbox_segment must not be empty"))
	}

	return result.ErrorOrNil()
}

// Validate reports every problem with the similarity settings at once
func (s Similarity) Validate() error {
	var result *multierror.Error

	if s.TitleThreshold < 0 || s.TitleThreshold > 100 {
		result = multierror.Append(result, errors.Errorf("title_threshold must be between 0 and 100, got %d", s.TitleThreshold))
	}
	if s.HammingThreshold < 0 || s.HammingThreshold > 64 {
		result = multierror.Append(result, errors.Errorf("hamming_threshold must be between 0 and 64, got %d", s.HammingThreshold))
	}

	return result.ErrorOrNil()
}
