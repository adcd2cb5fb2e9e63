package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// TitleRatio returns the normalized Indel similarity of two strings in [0, 100]:
// 100 * (1 - indel(a, b) / (len(a) + len(b))), which equals
// 200 * LCS(a, b) / (len(a) + len(b)). Lengths are counted in runes.
func TitleRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// titleSimilarity compares lower-cased titles
func titleSimilarity(a, b string) float64 {
	return TitleRatio(strings.ToLower(a), strings.ToLower(b))
}
