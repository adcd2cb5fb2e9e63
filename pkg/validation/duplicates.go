package validation

import (
	"math"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
)

// noDistance stands in for the Hamming distance when either side lacks a fingerprint
const noDistance = math.MaxInt32

// Match describes why an inbox document was flagged against a corpus document
type Match struct {
	Inbox             string
	Corpus            string
	TitleSimilarity   float64
	HammingDistance   int
	ContentSimilarity int
}

// DetectNearDuplicates warns about inbox documents that resemble an existing
// corpus document. Corpus documents are scanned in the given order and only the
// first qualifying match is reported per inbox document. The pass never produces
// errors.
func (v *Validator) DetectNearDuplicates(documents []*docs.Document) []Finding {
	if !v.similarity.Fingerprint && !v.similarity.FuzzyTitles {
		return []Finding{Warningf(SystemPath,
			"Similarity capabilities disabled (fingerprint, fuzzy titles). Skipping duplicate detection.")}
	}

	var inbox, corpus []*docs.Document
	for _, doc := range documents {
		if v.IsInbox(doc) {
			inbox = append(inbox, doc)
		} else {
			corpus = append(corpus, doc)
		}
	}

	var findings []Finding
	for _, candidate := range inbox {
		match, ok := v.firstMatch(candidate, corpus)
		if !ok {
			continue
		}
		findings = append(findings, Warningf(candidate.Path,
			"Near-duplicate detected: inbox %s resembles corpus %s (title similarity %.0f%%, content similarity ~%d%%)",
			match.Inbox, match.Corpus, match.TitleSimilarity, match.ContentSimilarity))
	}
	return findings
}

func (v *Validator) firstMatch(candidate *docs.Document, corpus []*docs.Document) (Match, bool) {
	for _, existing := range corpus {
		m := v.compare(candidate, existing)
		if m.TitleSimilarity >= float64(v.similarity.TitleThreshold) || m.HammingDistance <= v.similarity.HammingThreshold {
			return m, true
		}
	}
	return Match{}, false
}

func (v *Validator) compare(candidate, existing *docs.Document) Match {
	m := Match{
		Inbox:           candidate.Path,
		Corpus:          existing.Path,
		HammingDistance: noDistance,
	}

	if v.similarity.FuzzyTitles {
		a, b := candidate.Metadata.TitleText(), existing.Metadata.TitleText()
		if a != "" && b != "" {
			m.TitleSimilarity = titleSimilarity(a, b)
		}
	}

	if v.similarity.Fingerprint && candidate.Fingerprint != nil && existing.Fingerprint != nil {
		m.HammingDistance = docs.HammingDistance(*candidate.Fingerprint, *existing.Fingerprint)
		m.ContentSimilarity = contentSimilarity(m.HammingDistance)
	}

	return m
}

// contentSimilarity converts a Hamming distance to a reporting percentage
func contentSimilarity(distance int) int {
	sim := 100 - distance*100/64
	if sim < 0 {
		return 0
	}
	return sim
}
