package validation

import (
	"regexp"
	"strings"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
)

var (
	conceptStrip = regexp.MustCompile(`[^a-z0-9\s]`)
	conceptSpace = regexp.MustCompile(`\s+`)
)

// NormalizeConcept turns a title into the key canonical documents are grouped by:
// lower-cased, stripped of anything but ASCII letters, digits and whitespace,
// with whitespace runs collapsed.
func NormalizeConcept(title string) string {
	key := conceptStrip.ReplaceAllString(strings.ToLower(title), "")
	key = conceptSpace.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// CheckCanonical reports concepts that have more than one canonical document.
// The finding is attributed to the first document of the group.
func (v *Validator) CheckCanonical(documents []*docs.Document) []Finding {
	groups := make(map[string][]string)
	var order []string

	for _, doc := range documents {
		if !doc.Metadata.IsCanonical() {
			continue
		}
		key := NormalizeConcept(doc.Metadata.TitleText())
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], doc.Path)
	}

	var findings []Finding
	for _, key := range order {
		paths := groups[key]
		if len(paths) < 2 {
			continue
		}
		findings = append(findings, Errorf(paths[0],
			"Multiple canonical documents for concept '%s': %s", key, strings.Join(paths, ", ")))
	}
	return findings
}
