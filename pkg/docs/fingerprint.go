package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"github.com/mfonda/simhash"
)

// ShingleWidth is the number of characters per fingerprint feature
const ShingleWidth = 4

var (
	markupChars = regexp.MustCompile("[#*`\\[\\]()]")
	whitespace  = regexp.MustCompile(`\s+`)
)

// ContentHash returns the hex SHA-256 digest of the raw content
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NormalizeBody strips markdown structural characters and collapses whitespace
func NormalizeBody(body string) string {
	text := markupChars.ReplaceAllString(body, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Fingerprint computes the 64-bit simhash of a document body. The second return
// value is false when the normalized body is empty.
func Fingerprint(body string) (uint64, bool) {
	text := NormalizeBody(body)
	if text == "" {
		return 0, false
	}
	return simhash.SimhashBytes(shingles(text, ShingleWidth)), true
}

// shingles lower-cases the text, keeps only word characters and slides a window
// of width runes over the result. Repeated shingles weigh proportionally more.
func shingles(text string, width int) [][]byte {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	runes := []rune(b.String())
	if len(runes) == 0 {
		return [][]byte{[]byte(text)}
	}

	n := len(runes) - width + 1
	if n < 1 {
		n = 1
	}
	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		end := i + width
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, []byte(string(runes[i:end])))
	}
	return out
}

// HammingDistance counts the differing bits between two fingerprints
func HammingDistance(a, b uint64) int {
	return int(simhash.Compare(a, b))
}
