package docs

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Delimiter is the line that opens and closes a front-matter block
const Delimiter = "---"

// FrontMatter is the result of splitting a document into its metadata block and body
type FrontMatter struct {
	// Block is the raw text between the delimiters
	Block string
	// Body is everything after the closing delimiter line
	Body string
	// Found is false when the content has no complete front-matter block
	Found bool
}

// SplitFrontMatter locates the front-matter block. The content must start with a
// delimiter line and contain a second delimiter line; otherwise Found is false.
func SplitFrontMatter(content string) FrontMatter {
	first, rest, _ := cutLine(content)
	if !isDelimiter(first) {
		return FrontMatter{Body: content}
	}

	var block strings.Builder
	for rest != "" {
		var line string
		line, rest, _ = cutLine(rest)
		if isDelimiter(line) {
			return FrontMatter{Block: block.String(), Body: rest, Found: true}
		}
		block.WriteString(line)
		block.WriteByte('\n')
	}
	return FrontMatter{Body: content}
}

// ParseFrontMatter extracts the metadata of a document. A nil Metadata with a nil
// error means the document has no front matter and is not managed. A non-nil error
// means the block exists but could not be parsed.
func ParseFrontMatter(content string) (*Metadata, FrontMatter, error) {
	fm := SplitFrontMatter(content)
	if !fm.Found {
		return nil, fm, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(fm.Block), &node); err != nil {
		return nil, fm, errors.Wrap(err, "failed to parse front matter")
	}
	if node.Kind == 0 {
		return nil, fm, nil
	}

	meta, err := metadataFromNode(&node)
	if err != nil {
		return nil, fm, err
	}
	return meta, fm, nil
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}

// cutLine splits off the first line, reporting whether a newline terminated it
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return line, rest, found
}
