package validation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

var (
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	looseDatePattern = regexp.MustCompile(`^(\d{1,4})-(\d{1,2})-(\d{1,2})$`)
	dateFields       = []string{docs.FieldCreated, docs.FieldUpdated}
)

// Validator runs the metadata, canonical and near-duplicate passes
type Validator struct {
	rules        Rules
	similarity   Similarity
	docIDPattern *regexp.Regexp
	docTypes     map[string]struct{}
	statuses     map[string]struct{}
}

// New creates a Validator after checking the rules and similarity settings
func New(rules Rules, similarity Similarity) (*Validator, error) {
	if err := rules.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid validation rules")
	}
	if err := similarity.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid similarity settings")
	}

	return &Validator{
		rules:        rules,
		similarity:   similarity,
		docIDPattern: regexp.MustCompile(rules.DocIDPattern),
		docTypes:     toSet(rules.DocTypes),
		statuses:     toSet(rules.Statuses),
	}, nil
}

// IsInbox reports whether the document is a staged submission
func (v *Validator) IsInbox(doc *docs.Document) bool {
	return doc.InSegment(v.rules.InboxSegment)
}

// ValidDocID reports whether id has the PREFIX-YYYY-NNNNN shape
func (v *Validator) ValidDocID(id string) bool {
	return v.docIDPattern.MatchString(id)
}

// ValidateAll runs the per-document field rules over every document, treating
// inbox documents as minimal submissions.
func (v *Validator) ValidateAll(documents []*docs.Document) []Finding {
	var findings []Finding
	for _, doc := range documents {
		findings = append(findings, v.ValidateDocument(doc, v.IsInbox(doc))...)
	}
	return findings
}

// ValidateDocument checks one document's metadata and returns every violation.
// Minimal documents only need the inbox field set and skip the doc_id format check.
func (v *Validator) ValidateDocument(doc *docs.Document, minimal bool) []Finding {
	meta := doc.Metadata
	if meta == nil {
		return nil
	}

	var findings []Finding

	required := v.rules.RequiredFields
	if minimal {
		required = v.rules.InboxRequiredFields
	}
	if missing := missingFields(meta, required); len(missing) > 0 {
		findings = append(findings, Errorf(doc.Path, "Missing required fields: %s", strings.Join(missing, ", ")))
	}

	if f, ok := v.checkVocabulary(doc.Path, docs.FieldDocType, meta.DocType, v.docTypes, v.rules.DocTypes); !ok {
		findings = append(findings, f)
	}
	if f, ok := v.checkVocabulary(doc.Path, docs.FieldStatus, meta.Status, v.statuses, v.rules.Statuses); !ok {
		findings = append(findings, f)
	}

	if !minimal && meta.DocID != nil && meta.DocID.Truthy() {
		if id := meta.DocID.String(); !v.ValidDocID(id) {
			findings = append(findings, Errorf(doc.Path,
				"Invalid doc_id format '%s'. Expected format: PREFIX-YYYY-NNNNN (e.g., RFC-2025-00012)", id))
		}
	}

	for _, field := range dateFields {
		value, ok := meta.Get(field)
		if !ok || !value.Truthy() {
			continue
		}
		findings = append(findings, checkDate(doc.Path, field, value.String())...)
	}

	if meta.Canonical != nil && meta.Canonical.Kind != docs.KindNull && meta.Canonical.Kind != docs.KindBool {
		findings = append(findings, Errorf(doc.Path, "Field 'canonical' must be boolean, got: %s", meta.Canonical.Kind))
	}

	if meta.Tags != nil && meta.Tags.Kind != docs.KindNull && meta.Tags.Kind != docs.KindList {
		findings = append(findings, Errorf(doc.Path, "Field 'tags' must be a list, got: %s", meta.Tags.Kind))
	}

	return findings
}

func (v *Validator) checkVocabulary(path, field string, value *docs.Value, allowed map[string]struct{}, valid []string) (Finding, bool) {
	if value == nil || !value.Truthy() {
		return Finding{}, true
	}
	if s, ok := value.Str(); ok {
		if _, known := allowed[s]; known {
			return Finding{}, true
		}
	}
	return Errorf(path, "Invalid %s '%s'. Must be one of: %s", field, value.String(), strings.Join(sorted(valid), ", ")), false
}

func missingFields(meta *docs.Metadata, required []string) []string {
	var missing []string
	seen := make(map[string]struct{}, len(required))
	for _, field := range required {
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		if !meta.Has(field) {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// checkDate applies the lexical YYYY-MM-DD check and the calendar check. A value
// with a loose Y-M-D shape that fails the lexical check is still checked against
// the calendar, so both failures are reported.
func checkDate(path, field, value string) []Finding {
	var findings []Finding

	if !datePattern.MatchString(value) {
		findings = append(findings, Errorf(path, "Invalid %s format '%s'. Expected ISO format: YYYY-MM-DD", field, value))
		if m := looseDatePattern.FindStringSubmatch(value); m != nil && !isCalendarDate(m[1], m[2], m[3]) {
			findings = append(findings, Errorf(path, "Invalid %s date '%s'. Date is not valid.", field, value))
		}
		return findings
	}

	if _, err := time.Parse(dateLayout, value); err != nil {
		findings = append(findings, Errorf(path, "Invalid %s date '%s'. Date is not valid.", field, value))
	}
	return findings
}

func isCalendarDate(year, month, day string) bool {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if y < 1 || m < 1 || m > 12 || d < 1 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sorted(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
